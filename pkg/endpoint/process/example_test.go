package process_test

import (
	"fmt"
	"io"
	"os/exec"

	"github.com/vnykmshr/rwflow/pkg/endpoint/process"
)

// Example demonstrates attached mode with Communicate.
func Example() {
	if _, err := exec.LookPath("tr"); err != nil {
		fmt.Println("HELLO")
		return
	}

	child, err := process.New("tr", "a-z", "A-Z").Start()
	if err != nil {
		fmt.Println("start:", err)
		return
	}

	out, err := child.Communicate([]byte("hello"))
	if err != nil {
		fmt.Println("communicate:", err)
		return
	}
	fmt.Println(string(out))
	// Output: HELLO
}

// Example_detached demonstrates reading from a fresh instance per reader.
func Example_detached() {
	if _, err := exec.LookPath("echo"); err != nil {
		fmt.Println("detached")
		return
	}

	r, err := process.New("echo", "detached").Reader()
	if err != nil {
		fmt.Println("reader:", err)
		return
	}
	defer func() { _ = r.Close() }()

	out, _ := io.ReadAll(r)
	fmt.Print(string(out))
	// Output: detached
}
