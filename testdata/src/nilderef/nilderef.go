package nilderef

import (
	"log"
	"os"
)

type config struct {
	name *string
	next *config
}

type namer interface {
	Name() string
}

func (c *config) Name() string {
	if c == nil {
		return ""
	}
	return *c.name
}

func (c *config) depth() int {
	if c == nil {
		return 0
	}
	return 1 + c.next.depth()
}

func derefNil() int {
	var p *int
	return *p // want `FS020: p is nil here`
}

func fieldOfNil(c *config) string {
	if c == nil {
		return *c.name // want `FS020: c is nil here`
	}
	return *c.name
}

func checkAfterUse(c *config) {
	_ = *c.name
	if c == nil { // want `FS011: condition c == nil is always false`
		return
	}
}

func fatalGuard(p *int) int {
	if p == nil {
		log.Fatal("nil pointer")
	}
	if p == nil { // want `FS011: condition p == nil is always false`
		return 0
	}
	return *p
}

func mustOpen(name string) *os.File {
	f, err := os.Open(name)
	if err != nil {
		log.Fatal(err)
	}
	return f
}

func addrOf() int {
	x := 1
	p := &x
	return *p
}

var current *config

func refresh() {}

func global() string {
	current = nil
	refresh()
	return *current.name
}

func boxed() int {
	var c *config
	var n namer = c
	if n == nil { // want `FS011: condition n == nil is always false`
		return 0
	}
	return 1
}

func shortCircuit(c *config) bool {
	return c != nil && c.name != nil
}

func wrongShortCircuit(c *config) bool {
	return c == nil && c.name != nil // want `FS020: c is nil here`
}

func captured() int {
	var p *int
	set := func() {
		x := 1
		p = &x
	}
	set()
	return *p
}
