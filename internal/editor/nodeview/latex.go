package nodeview

import (
	"errors"
	"fmt"
	"html"
	"strings"
)

// ErrRender marks math source that cannot be rendered. It never blocks a
// commit; the rendered view carries the error instead.
var ErrRender = errors.New("render failed")

// InvalidAnnotation is shown next to math that failed to render.
const InvalidAnnotation = "(Invalid LaTeX)"

// RenderMath returns display markup for latex. The markup carries the source
// for client-side typesetting. When the source is malformed the markup is
// still returned, followed by the invalid annotation, together with an error
// wrapping ErrRender.
func RenderMath(latex string, display bool) (string, error) {
	class := "katex-source"
	tag := "span"
	if display {
		class += " katex-display"
		tag = "div"
	}
	src := html.EscapeString(latex)
	out := fmt.Sprintf(`<%s class="%s" data-latex="%s">%s</%s>`, tag, class, src, src, tag)

	if err := ValidateLatex(latex); err != nil {
		return out + `<span class="math-error">` + InvalidAnnotation + `</span>`, err
	}
	return out, nil
}

// ValidateLatex performs a structural check of latex: balanced groups,
// matching \begin/\end environments and \left/\right pairs, and no dangling
// script or escape characters.
func ValidateLatex(latex string) error {
	var groups []byte
	var envs []string
	delims := 0

	for i := 0; i < len(latex); i++ {
		c := latex[i]
		switch c {
		case '\\':
			if i+1 >= len(latex) {
				return renderError("trailing backslash")
			}
			name, end := command(latex, i+1)
			switch name {
			case "begin", "end":
				env, next, ok := braced(latex, end)
				if !ok {
					return renderError(`\%s without environment name`, name)
				}
				if name == "begin" {
					envs = append(envs, env)
				} else {
					if len(envs) == 0 || envs[len(envs)-1] != env {
						return renderError(`\end{%s} without matching \begin`, env)
					}
					envs = envs[:len(envs)-1]
				}
				end = next
			case "left":
				delims++
			case "right":
				if delims == 0 {
					return renderError(`\right without \left`)
				}
				delims--
			}
			i = end - 1
		case '{':
			groups = append(groups, c)
		case '}':
			if len(groups) == 0 {
				return renderError("unexpected }")
			}
			groups = groups[:len(groups)-1]
		case '^', '_':
			rest := strings.TrimLeft(latex[i+1:], " \t\n")
			if rest == "" || rest[0] == '}' || rest[0] == '^' || rest[0] == '_' {
				return renderError("missing argument for %c", c)
			}
		}
	}

	switch {
	case len(groups) > 0:
		return renderError("unclosed {")
	case len(envs) > 0:
		return renderError(`\begin{%s} is never closed`, envs[len(envs)-1])
	case delims > 0:
		return renderError(`\left without \right`)
	}
	return nil
}

func renderError(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrRender)
}

// command reads a control sequence name starting at i and returns it with the
// index just past it. Single-character escapes such as \{ yield that character.
func command(s string, i int) (string, int) {
	j := i
	for j < len(s) && isLetter(s[j]) {
		j++
	}
	if j == i {
		return s[i : i+1], i + 1
	}
	return s[i:j], j
}

// braced reads a {name} group starting at i, skipping leading spaces.
func braced(s string, i int) (string, int, bool) {
	for i < len(s) && s[i] == ' ' {
		i++
	}
	if i >= len(s) || s[i] != '{' {
		return "", i, false
	}
	end := strings.IndexByte(s[i:], '}')
	if end < 0 {
		return "", i, false
	}
	return strings.TrimSpace(s[i+1 : i+end]), i + end + 1, true
}

func isLetter(c byte) bool { return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' }
