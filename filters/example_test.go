package filters_test

import (
	"fmt"

	"github.com/thomas-touhey/lscl/escape"
	"github.com/thomas-touhey/lscl/filters"
)

func ExampleParse() {
	f, err := filters.Parse(`
input { stdin {} }
filter {
  if [level] == "debug" { drop {} }
  mutate { id => "tagger" add_tag => ["seen"] }
}
`, escape.Options{}, filters.Options{})
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	for _, node := range f {
		switch n := node.(type) {
		case filters.Filter:
			fmt.Printf("filter %s (label %q, %d setting(s))\n", n.Name, n.Label, len(n.Config.Entries))
		case filters.Branching:
			fmt.Printf("branching with %d branch(es)\n", len(n.Branches))
		}
	}
	// Output:
	// branching with 1 branch(es)
	// filter mutate (label "tagger", 2 setting(s))
}
