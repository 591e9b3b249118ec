package codec_test

import (
	"fmt"

	"github.com/vnykmshr/rwflow/pkg/endpoint/buffer"
	"github.com/vnykmshr/rwflow/pkg/sink/codec"
)

type Point struct {
	X, Y int
}

func Example() {
	s := codec.New(buffer.New(), codec.Gob)
	if err := s.Save(Point{X: 3, Y: 4}); err != nil {
		fmt.Println("save:", err)
		return
	}

	p, err := codec.LoadAs[Point](s)
	if err != nil {
		fmt.Println("load:", err)
		return
	}
	fmt.Printf("%+v\n", p)
	// Output: {X:3 Y:4}
}
