package keys

import "testing"

func TestParse(t *testing.T) {
	tests := []struct {
		in      string
		want    Key
		wantErr bool
	}{
		{"Escape", Key{Name: Escape}, false},
		{"Mod+Enter", Key{Name: Enter, Ctrl: true}, false},
		{"Cmd-Enter", Key{Name: Enter, Meta: true}, false},
		{"Ctrl-Shift-ArrowUp", Key{Name: ArrowUp, Ctrl: true, Shift: true}, false},
		{"Hyper+Enter", Key{}, true},
		{"", Key{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Parse(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Parse(%q) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}

func TestModifiers(t *testing.T) {
	if !(Key{Name: Enter, Meta: true}).Mod() {
		t.Error("Meta+Enter should count as Mod")
	}
	if (Key{Name: Enter, Shift: true}).Is(Enter) {
		t.Error("Shift+Enter is not a bare Enter")
	}
	if got := (Key{Name: Enter, Ctrl: true, Shift: true}).String(); got != "Ctrl+Shift+Enter" {
		t.Errorf("String() = %q", got)
	}
}
