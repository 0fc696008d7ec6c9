package cycles_test

import (
	"fmt"

	"github.com/matzehuels/depscope/pkg/cycles"
	"github.com/matzehuels/depscope/pkg/report"
)

func ExampleDetect() {
	input := `compileClasspath - Compile classpath for source set 'main'.
+--- app:core:1.0
|    \--- app:util:1.0
|         \--- app:core:1.0
\--- org.slf4j:slf4j-api:2.0.9
`
	r, _ := report.ParseString(input, report.DefaultOptions())

	circular := cycles.Detect(r.Chunks)
	for _, e := range circular.Strings() {
		fmt.Println(e)
	}
	// Output:
	// app:core:1.0->app:util:1.0
	// app:util:1.0->app:core:1.0
}
