package util_test

import (
	"fmt"
	"testing"

	"github.com/ifgw-pl/golabspec/util"
)

func ExampleSetBit_mSB() {
	out := util.SetBit(0, 7, true)
	fmt.Printf("%08b\n", out)
	// Output: 10000000
}

func ExampleSetBit_lSB() {
	out := util.SetBit(255, 0, false)
	fmt.Printf("%08b\n", out)
	// Output: 11111110
}

func TestIntSliceToCSV(t *testing.T) {
	inp := []int{1, 2, 3}
	expected := "1,2,3"
	out := util.IntSliceToCSV(inp)
	if expected != out {
		t.Errorf("expected %s got %s", expected, out)
	}
}

func TestGetBit(t *testing.T) {
	var b byte = 0b0010_0100
	for i := uint(0); i < 8; i++ {
		expected := i == 2 || i == 5
		if util.GetBit(b, i) != expected {
			t.Errorf("bit %d of %08b, expected %t", i, b, expected)
		}
	}
}
