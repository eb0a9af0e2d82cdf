package conveyor_test

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/skosovsky/conveyor"
)

func ExampleSubstitute() {
	r := conveyor.MapResolver{"HOST": "node1"}
	out, names := conveyor.Substitute("network --hostname=@@HOST@@ --gateway=@@GW@@", r)
	fmt.Println(out)
	fmt.Println(names)
	// Output:
	// network --hostname=node1 --gateway=@@GW@@
	// [HOST GW]
}

func ExampleParseSelection() {
	sel, err := conveyor.ParseSelection("packages:extra;post:cleanup,motd")
	if err != nil {
		panic(err)
	}
	for _, e := range sel {
		fmt.Println(e.Section, e.Names)
	}
	// Output:
	// packages [extra]
	// post [cleanup motd]
}

func ExampleBlueprint_AddPart() {
	root, err := os.MkdirTemp("", "conveyor")
	if err != nil {
		panic(err)
	}
	defer os.RemoveAll(root)

	origin := filepath.Join(root, "parts", "packages", "base")
	_ = os.MkdirAll(filepath.Dir(origin), 0o755)
	_ = os.WriteFile(origin, []byte("@core\n"), 0o644)

	bp := conveyor.NewBlueprint("web", filepath.Join(root, "templates", "web"))
	if err := bp.Init(); err != nil {
		panic(err)
	}
	ref, err := bp.AddPart(conveyor.Packages, conveyor.NewFragment(conveyor.Packages, origin))
	if err != nil {
		panic(err)
	}
	for line := range ref.Lines() {
		fmt.Print(line)
	}
	fmt.Println(ref.Kind())
	// Output:
	// @core
	// persisted
}
