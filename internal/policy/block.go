package policy

// Block is one node of the generic tree produced by the tolerant
// recursive-descent parse. Values maps key names to either a scalar string, a
// *Block for a single named sub-block, or a []*Block once the same name
// repeats. Items collects standalone tokens that appear inside a block without
// a key (list entries). Blocks only live for the duration of one parse call;
// the typed PolicyConfig is extracted from them before they are discarded.
type Block struct {
	Values map[string]interface{}
	Items  []string

	// Label holds the quoted string between a block's name and its opening
	// brace, e.g. `secrets "*.py" { ... }`. Labeled distinguishes an explicit
	// empty label from no label at all.
	Label   string
	Labeled bool
}

func newBlock() *Block {
	return &Block{Values: map[string]interface{}{}}
}

// parseBlock consumes tokens starting at pos, which must point at an opening
// brace, up to and including the matching closing brace. It returns the parsed
// block and the position just past the closing brace. The parse is total: a
// missing closing brace simply ends at the end of the token stream.
func parseBlock(tokens []string, pos int) (*Block, int) {
	b := newBlock()
	pos++ // opening brace
	for pos < len(tokens) && tokens[pos] != "}" {
		tok := tokens[pos]
		switch {
		case tok == "{":
			// Anonymous nested block: consume it so the stream stays aligned,
			// but it contributes nothing to the parent.
			_, pos = parseBlock(tokens, pos)
		case pos+1 < len(tokens) && tokens[pos+1] == "{":
			var nested *Block
			nested, pos = parseBlock(tokens, pos+1)
			b.merge(tok, nested, false)
		case pos+2 < len(tokens) && tokens[pos+2] == "{":
			label := tokens[pos+1]
			var nested *Block
			nested, pos = parseBlock(tokens, pos+2)
			nested.Label = label
			nested.Labeled = true
			b.merge(tok, nested, true)
		case pos+1 < len(tokens) && tokens[pos+1] == "=":
			if pos+2 < len(tokens) {
				b.Values[tok] = tokens[pos+2]
			} else {
				b.Values[tok] = ""
			}
			pos += 3
		case pos+1 < len(tokens) && !isStructural(tokens[pos+1]):
			// Implicit key/value pair without '='.
			b.Values[tok] = tokens[pos+1]
			pos += 2
		default:
			b.Items = append(b.Items, tok)
			pos++
		}
	}
	return b, pos + 1 // closing brace
}

func isStructural(tok string) bool {
	return tok == "{" || tok == "}" || tok == "="
}

// merge stores a named sub-block under name, coalescing repeats into a list.
// Labeled blocks are always stored as list members so that every consumer sees
// the same shape whether one or many labeled blocks are present.
func (b *Block) merge(name string, nested *Block, alwaysList bool) {
	switch existing := b.Values[name].(type) {
	case *Block:
		b.Values[name] = []*Block{existing, nested}
	case []*Block:
		b.Values[name] = append(existing, nested)
	default:
		if alwaysList {
			b.Values[name] = []*Block{nested}
		} else {
			b.Values[name] = nested
		}
	}
}

// blockList normalizes the single-or-many sub-block shape to a slice.
// Non-block values yield an empty slice.
func blockList(v interface{}) []*Block {
	switch t := v.(type) {
	case *Block:
		return []*Block{t}
	case []*Block:
		return t
	}
	return nil
}

// stringValue returns the scalar string stored under key, or def when the key
// is absent or holds a sub-block instead of a scalar.
func (b *Block) stringValue(key, def string) string {
	if b == nil {
		return def
	}
	if s, ok := b.Values[key].(string); ok {
		return s
	}
	return def
}

// singleBlock returns the sub-block stored under key when exactly one is
// present in scalar form; a repeated (list) value or a scalar string yields nil.
func (b *Block) singleBlock(key string) *Block {
	if b == nil {
		return nil
	}
	blk, _ := b.Values[key].(*Block)
	return blk
}

func (b *Block) hasKey(key string) bool {
	if b == nil {
		return false
	}
	_, ok := b.Values[key]
	return ok
}
