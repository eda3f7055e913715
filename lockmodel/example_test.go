package lockmodel_test

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kolkov/lockmodel/lockmodel"
)

// Example demonstrates a lock hand-off between two threads.
func Example() {
	m := lockmodel.NewMachine()
	a := m.Threads().Spawn("a")
	b := m.Threads().Spawn("b")

	m.SetActive(a)
	l := m.Create()
	_ = m.Acquire(l)

	m.SetActive(b)
	_ = m.Acquire(l) // blocks b

	m.SetActive(a)
	_ = m.Release(l) // hands l to b

	st, _ := m.Locks().Get(l)
	fmt.Println(st, m.Synchronized())

	// Output:
	// LockedBy(T1) [T1]
}

// Example_undefinedBehavior shows that releasing an unheld lock is
// undefined behavior.
func Example_undefinedBehavior() {
	m := lockmodel.NewMachine()
	m.SetActive(m.Threads().Spawn("main"))

	v, _ := lockmodel.Call(m, lockmodel.LockCreate, nil, lockmodel.IntType(false, 8))
	id, _ := v.AsInt()

	_, err := lockmodel.Call(m, lockmodel.LockRelease,
		[]lockmodel.Arg{{Value: lockmodel.Int(id), Type: lockmodel.IntType(false, 8)}},
		lockmodel.UnitType())
	fmt.Println(errors.Is(err, lockmodel.ErrUndefinedBehavior))

	// Output:
	// true
}

// Example_explore explores an ABBA lock order inversion.
func Example_explore() {
	prog, err := lockmodel.ParseProgram(strings.NewReader(`format v1.0.0
locks 2
thread a
  acquire 0
  acquire 1
  release 1
  release 0
thread b
  acquire 1
  acquire 0
  release 0
  release 1
`))
	if err != nil {
		fmt.Println(err)
		return
	}

	sum, err := lockmodel.Explore(context.Background(), prog, lockmodel.Options{Workers: 1})
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(sum.Count(lockmodel.Deadlock) > 0, sum.Count(lockmodel.UB))

	// Output:
	// true 0
}

// Example_getInfo prints version information.
func Example_getInfo() {
	info := lockmodel.GetInfo()
	fmt.Printf("lockmodel %s, scenario format %s\n", info.Version, info.ScenarioFormat)

	// Output:
	// lockmodel 0.1.0, scenario format v1
}
