package markdown

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/dshills/richdoc/internal/doc"
)

// TokenParser maps a token type to nodes. Exactly one of Node and Format is
// set.
//
// For *_open tokens Node must return an element that receives the content up
// to the matching *_close token, or "" to drop the open and close tokens
// while keeping the content. Format parsers apply their bits to the text
// between the open and close tokens; for self-contained tokens they produce
// a text node holding the token content.
type TokenParser struct {
	Node   func(tx *doc.Txn, tok *Token) doc.Key
	Format func(tok *Token) doc.TextFormat
}

// ParserMap maps token type prefixes ("paragraph" for paragraph_open) and
// self-contained token types to parsers.
type ParserMap map[string]TokenParser

type frame struct {
	node        doc.Key
	format      doc.TextFormat
	ignoreUntil string
	ignore      string
}

type importer struct {
	tx      *doc.Txn
	parsers ParserMap
	logger  *zap.Logger
	stack   []*frame
}

// Import appends the nodes built from tokens to parent.
func Import(tx *doc.Txn, parent doc.Key, tokens []Token, parsers ParserMap, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	im := &importer{
		tx:      tx,
		parsers: parsers,
		logger:  logger,
		stack:   []*frame{{node: parent}},
	}
	return im.parse(tokens)
}

func (im *importer) top() *frame {
	return im.stack[len(im.stack)-1]
}

func (im *importer) parse(tokens []Token) error {
	for i := range tokens {
		tok := &tokens[i]
		top := im.top()

		if top.ignoreUntil != "" {
			if tok.Type == top.ignoreUntil {
				top.ignoreUntil = ""
			}
			continue
		}
		if top.ignore != "" && tok.Type == top.ignore {
			top.ignore = ""
			continue
		}

		switch {
		case strings.HasSuffix(tok.Type, "_open"):
			prefix := strings.TrimSuffix(tok.Type, "_open")
			p, ok := im.parsers[prefix]
			switch {
			case ok && p.Node != nil:
				node := p.Node(im.tx, tok)
				if node == "" {
					top.ignore = prefix + "_close"
					continue
				}
				if !im.tx.IsElement(node) {
					return fmt.Errorf("%w: %q built %s", ErrNotElement, prefix, im.tx.Type(node))
				}
				im.stack = append(im.stack, &frame{node: node})
			case ok && p.Format != nil:
				top.format |= p.Format(tok)
			default:
				im.logger.Warn("unsupported markdown block skipped", zap.String("token", prefix))
				top.ignoreUntil = prefix + "_close"
			}

		case strings.HasSuffix(tok.Type, "_close"):
			prefix := strings.TrimSuffix(tok.Type, "_close")
			p, ok := im.parsers[prefix]
			switch {
			case ok && p.Node != nil:
				if len(im.stack) < 2 {
					im.logger.Warn("unbalanced markdown close token", zap.String("token", tok.Type))
					continue
				}
				node := top.node
				im.stack = im.stack[:len(im.stack)-1]
				im.tx.Append(im.top().node, node)
			case ok && p.Format != nil:
				top.format &^= p.Format(tok)
			}

		default:
			if p, ok := im.parsers[tok.Type]; ok {
				switch {
				case p.Node != nil:
					if node := p.Node(im.tx, tok); node != "" {
						im.tx.Append(top.node, node)
					}
				case p.Format != nil:
					t := im.tx.CreateText(tok.Content)
					im.tx.SetTextFormat(t, p.Format(tok))
					im.tx.Append(top.node, t)
				}
				continue
			}
			switch tok.Type {
			case "inline":
				if err := im.parse(tok.Children); err != nil {
					return err
				}
			case "text":
				t := im.tx.CreateText(tok.Content)
				im.tx.SetTextFormat(t, top.format)
				im.tx.Append(top.node, t)
			default:
				im.logger.Warn("unsupported markdown token dropped", zap.String("token", tok.Type))
			}
		}
	}
	return nil
}
