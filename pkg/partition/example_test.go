package partition_test

import (
	"fmt"

	"github.com/matzehuels/masonry/pkg/partition"
)

func ExamplePartition() {
	entries := []partition.Entry{
		{ID: "sunset", Height: 450},
		{ID: "portrait", Height: 620},
		{ID: "beach", Height: 300},
		{ID: "skyline", Height: 380},
		{ID: "forest", Height: 450},
		{ID: "harbor", Height: 300},
	}

	res, err := partition.Partition(entries, 2, partition.Options{})
	if err != nil {
		panic(err)
	}

	fmt.Printf("columns: %d\n", len(res.Columns))
	fmt.Printf("heights: %v\n", res.Heights)
	fmt.Printf("balanced: %v\n", res.TargetMet)
	// Output:
	// columns: 2
	// heights: [1200 1300]
	// balanced: true
}
