package postgres

import "testing"

func TestLikePatternEscapesMetacharacters(t *testing.T) {
	cases := []struct {
		keyword string
		want    string
	}{
		{"강남 맛집", "%강남 맛집%"},
		{"100%", `%100\%%`},
		{"a_b", `%a\_b%`},
		{`back\slash`, `%back\\slash%`},
		{"%_", `%\%\_%`},
	}
	for _, c := range cases {
		if got := likePattern(c.keyword); got != c.want {
			t.Errorf("likePattern(%q) = %q, want %q", c.keyword, got, c.want)
		}
	}
}
