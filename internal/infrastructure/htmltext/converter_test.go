package htmltext

import "testing"

func TestToText(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "paragraphs",
			in:   "<html><body><p>Sehr geehrte Damen und Herren,</p><p>anbei die Rechnung.</p></body></html>",
			want: "Sehr geehrte Damen und Herren,\n\nanbei die Rechnung.",
		},
		{
			name: "script and style dropped",
			in:   "<style>p{color:red}</style><script>alert(1)</script><div>Muster GmbH</div>",
			want: "Muster GmbH",
		},
		{
			name: "entities and breaks",
			in:   "Stra&szlig;e&nbsp;1<br/>10115 Berlin &amp; Umgebung",
			want: "Straße 1\n10115 Berlin & Umgebung",
		},
		{
			name: "empty",
			in:   "<div>   </div>",
			want: "",
		},
	}
	c := New()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := c.ToText(tc.in); got != tc.want {
				t.Fatalf("ToText() = %q, want %q", got, tc.want)
			}
		})
	}
}
