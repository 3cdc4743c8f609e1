package issues

import (
	"strings"
	"testing"

	"github.com/belivan/MaxantAgency-sub013/internal/schema"
)

func titles(list []schema.RawIssue) string {
	var t []string
	for _, i := range list {
		t = append(t, i.Title)
	}
	return strings.Join(t, ",")
}

func TestModuleOrder(t *testing.T) {
	byModule := map[string][]schema.RawIssue{
		"zeta":           nil,
		"seo":            nil,
		"alpha":          nil,
		"desktop-visual": nil,
		"social":         nil,
	}
	got := strings.Join(ModuleOrder(byModule), ",")
	want := "desktop-visual,seo,social,alpha,zeta"
	if got != want {
		t.Errorf("ModuleOrder = %s, want %s", got, want)
	}
}

func TestSeverityRank(t *testing.T) {
	cases := []struct {
		s    schema.Severity
		want int
	}{
		{"critical", 0}, {"HIGH", 1}, {"medium", 2}, {"low", 3}, {"", 4}, {"bogus", 4},
	}
	for _, c := range cases {
		if got := SeverityRank(c.s); got != c.want {
			t.Errorf("SeverityRank(%q) = %d, want %d", c.s, got, c.want)
		}
	}
}

func TestTopN(t *testing.T) {
	list := []schema.RawIssue{
		{Title: "a", Priority: "low"},
		{Title: "b", Priority: "high", Severity: "medium"},
		{Title: "c", Priority: "high", Severity: "critical"},
		{Title: "d"},
		{Title: "e", Priority: "critical"},
	}
	if got := titles(TopN(list, 3)); got != "e,c,b" {
		t.Errorf("TopN(3) = %s, want e,c,b", got)
	}
	if got := titles(TopN(list, 10)); got != "e,c,b,a,d" {
		t.Errorf("TopN(10) = %s, want e,c,b,a,d", got)
	}
	if list[0].Title != "a" {
		t.Error("TopN mutated its input")
	}
}

func TestFlatten(t *testing.T) {
	byModule := map[string][]schema.RawIssue{
		"seo":            {{Title: "s1"}, {Title: "s2"}, {Title: "s3"}},
		"desktop-visual": {{Title: "d1", Source: "desktop-visual-analyzer"}},
	}
	got := Flatten(byModule, 2)
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	if got[0].Issue.Title != "d1" || got[0].Issue.Source != "desktop-visual-analyzer" {
		t.Errorf("first = %+v", got[0])
	}
	if got[1].Issue.Source != "seo" || got[2].Issue.Title != "s2" {
		t.Errorf("seo entries = %+v, %+v", got[1], got[2])
	}
	if Count(byModule) != 4 {
		t.Errorf("Count = %d, want 4", Count(byModule))
	}
}
