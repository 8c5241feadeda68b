package command

import (
	"context"
	"errors"
	"fmt"
	"html"
	"net/url"
	"strings"

	"github.com/Priya-753/notion-clone/internal/editor/engine"
	"github.com/Priya-753/notion-clone/internal/editor/node"
)

// Prompter asks the user for a value a command needs. ok is false when the
// user declines.
type Prompter interface {
	Prompt(ctx context.Context, label string) (value string, ok bool)
}

// PrompterFunc adapts a function to Prompter.
type PrompterFunc func(ctx context.Context, label string) (string, bool)

func (f PrompterFunc) Prompt(ctx context.Context, label string) (string, bool) { return f(ctx, label) }

// Answer is a Prompter that always returns value; an empty value declines.
func Answer(value string) Prompter {
	return PrompterFunc(func(context.Context, string) (string, bool) {
		return value, strings.TrimSpace(value) != ""
	})
}

// Extractor fetches the readable content of a web page as HTML.
type Extractor interface {
	Extract(ctx context.Context, rawURL string) (string, error)
}

// Env is what a command runs against. At is where the trigger text was; it is
// always a textblock position once the trigger has been removed.
type Env struct {
	Engine    *engine.Engine
	At        engine.Position
	Prompter  Prompter
	Extractor Extractor
}

func (env *Env) prompt(ctx context.Context, label string) (string, bool) {
	if env.Prompter == nil {
		return "", false
	}
	v, ok := env.Prompter.Prompt(ctx, label)
	return strings.TrimSpace(v), ok && strings.TrimSpace(v) != ""
}

// Command is one palette entry.
type Command struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Icon        string `json:"icon"`

	Run func(ctx context.Context, env *Env) error `json:"-"`
}

// Matches reports whether q is a case-insensitive substring of the title or
// description. The empty query matches everything.
func (c Command) Matches(q string) bool {
	if q == "" {
		return true
	}
	q = strings.ToLower(q)
	return strings.Contains(strings.ToLower(c.Title), q) || strings.Contains(strings.ToLower(c.Description), q)
}

// Registry returns the built-in commands in palette order.
func Registry() []Command {
	out := make([]Command, len(builtin))
	copy(out, builtin)
	return out
}

var builtin = []Command{
	{Title: "Heading 1", Description: "Large section heading (H1)", Icon: "heading-1", Run: setBlock(node.TypeHeading, node.Attrs{"level": 1})},
	{Title: "Heading 2", Description: "Medium section heading (H2)", Icon: "heading-2", Run: setBlock(node.TypeHeading, node.Attrs{"level": 2})},
	{Title: "Heading 3", Description: "Small section heading (H3)", Icon: "heading-3", Run: setBlock(node.TypeHeading, node.Attrs{"level": 3})},
	{Title: "Text", Description: "Just start typing with plain text", Icon: "type", Run: setBlock(node.TypeParagraph, nil)},
	{Title: "Bullet List", Description: "Create a simple bullet list", Icon: "list", Run: setBlock(node.TypeBulletList, nil)},
	{Title: "Numbered List", Description: "Create a list with numbering", Icon: "list-ordered", Run: setBlock(node.TypeOrderedList, nil)},
	{Title: "Task List", Description: "Track tasks with a to-do list", Icon: "check-square", Run: setBlock(node.TypeTaskList, nil)},
	{Title: "Quote", Description: "Capture a quote", Icon: "quote", Run: setBlock(node.TypeBlockquote, nil)},
	{Title: "Code Block", Description: "Create a code block", Icon: "code", Run: setBlock(node.TypeCodeBlock, nil)},
	{Title: "Divider", Description: "Visually divide blocks", Icon: "minus", Run: insertDivider},
	{Title: "Table", Description: "Insert a table", Icon: "table", Run: insertTable},
	{Title: "Image", Description: "Upload or embed an image", Icon: "image", Run: insertAtom(node.TypeImage)},
	{Title: "Emoji", Description: "Insert an emoji", Icon: "smile", Run: insertEmoji},
	{Title: "Inline Math", Description: "Insert an inline math equation", Icon: "calculator", Run: insertAtom(node.TypeInlineMath)},
	{Title: "Block Math", Description: "Insert a block math equation", Icon: "calculator", Run: insertAtom(node.TypeBlockMath)},
	{Title: "YouTube", Description: "Embed a YouTube video", Icon: "play", Run: insertYoutube},
	{Title: "Parse URL", Description: "Parse content from a URL", Icon: "globe", Run: parseURL},
}

func setBlock(t node.Type, attrs node.Attrs) func(context.Context, *Env) error {
	return func(_ context.Context, env *Env) error {
		return env.Engine.SetBlockType(t, attrs, engine.Range{From: env.At, To: env.At})
	}
}

func insertAtom(t node.Type) func(context.Context, *Env) error {
	return func(_ context.Context, env *Env) error {
		return env.Engine.InsertNode(node.New(t, nil), env.At)
	}
}

// insertDivider inserts a horizontal rule and leaves the cursor in the
// textblock after it, adding an empty paragraph when there is none.
func insertDivider(_ context.Context, env *Env) error {
	eng := env.Engine
	if err := eng.InsertNode(node.New(node.TypeHorizontalRule, nil), env.At); err != nil {
		return err
	}
	gap := eng.Selection().Head
	parent, err := eng.NodeAt(gap.Path)
	if err != nil {
		return err
	}
	if gap.Offset < len(parent.Content) && parent.Content[gap.Offset].IsTextblock() {
		return eng.SetSelection(engine.Cursor(engine.Position{Path: gap.Path.Child(gap.Offset)}))
	}
	return eng.InsertNode(node.Paragraph(), gap)
}

// insertTable inserts a 3x3 table whose first row is a header row.
func insertTable(_ context.Context, env *Env) error {
	const rows, cols = 3, 3
	table := node.New(node.TypeTable, nil)
	for r := 0; r < rows; r++ {
		cell := node.TypeTableCell
		if r == 0 {
			cell = node.TypeTableHeader
		}
		row := node.New(node.TypeTableRow, nil)
		for c := 0; c < cols; c++ {
			row.Content = append(row.Content, node.New(cell, nil, node.Paragraph()))
		}
		table.Content = append(table.Content, row)
	}
	return env.Engine.InsertNode(table, env.At)
}

func insertEmoji(ctx context.Context, env *Env) error {
	code, ok := env.prompt(ctx, "Emoji shortcode:")
	if !ok {
		return nil
	}
	code = strings.Trim(code, ":")
	if code == "" {
		return nil
	}
	return env.Engine.InsertNode(node.New(node.TypeEmoji, node.Attrs{"shortcode": code}), env.At)
}

func insertYoutube(ctx context.Context, env *Env) error {
	raw, ok := env.prompt(ctx, "Enter YouTube URL:")
	if !ok {
		return nil
	}
	src, ok := youtubeEmbed(raw)
	if !ok {
		return fmt.Errorf("%q is not a YouTube video URL: %w", raw, ErrInput)
	}
	return env.Engine.InsertNode(node.New(node.TypeYoutube, node.Attrs{"src": src}), env.At)
}

// parseURL inserts the extracted content of a page. Extraction failures
// become a visible paragraph rather than an error.
func parseURL(ctx context.Context, env *Env) error {
	raw, ok := env.prompt(ctx, "Enter URL to parse:")
	if !ok {
		return nil
	}
	escaped := html.EscapeString(raw)

	var markup string
	switch content, err := extract(ctx, env.Extractor, raw); {
	case err != nil:
		markup = "<p>Error parsing URL: " + escaped + "</p>"
	case strings.TrimSpace(content) == "":
		markup = "<p>No content found for: " + escaped + "</p>"
	default:
		markup = "<h2>Parsed from: " + escaped + "</h2><div>" + content + "</div>"
	}

	blocks, err := node.ParseFragment(markup)
	if err != nil {
		return err
	}
	return env.Engine.InsertContent(blocks, env.At)
}

func extract(ctx context.Context, x Extractor, raw string) (string, error) {
	if x == nil {
		return "", errors.New("no extractor configured")
	}
	return x.Extract(ctx, raw)
}

// youtubeEmbed converts watch, short and embed URLs to the embed form.
func youtubeEmbed(raw string) (string, bool) {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "", false
	}
	host := strings.TrimPrefix(strings.ToLower(u.Host), "www.")
	host = strings.TrimPrefix(host, "m.")

	var id string
	switch host {
	case "youtu.be":
		id = strings.Trim(u.Path, "/")
	case "youtube.com", "youtube-nocookie.com", "music.youtube.com":
		switch {
		case u.Path == "/watch":
			id = u.Query().Get("v")
		case strings.HasPrefix(u.Path, "/embed/"):
			id = strings.TrimPrefix(u.Path, "/embed/")
		case strings.HasPrefix(u.Path, "/shorts/"):
			id = strings.TrimPrefix(u.Path, "/shorts/")
		}
	}
	if id == "" || strings.Contains(id, "/") {
		return "", false
	}
	return "https://www.youtube.com/embed/" + url.PathEscape(id), true
}
