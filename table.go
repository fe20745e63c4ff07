package main

// connTable is the connection table: a mapping from the four-tuple to an
// owned connection. No removal path is implemented — entries accumulate
// forever once a connection reaches TimeWait — so this stays a plain map,
// single-threaded, with no lock discipline needed.
type connTable struct {
	conns map[quad]*connection
}

func newConnTable() *connTable {
	return &connTable{conns: make(map[quad]*connection)}
}

func (t *connTable) lookup(q quad) (*connection, bool) {
	c, ok := t.conns[q]
	return c, ok
}

func (t *connTable) insert(q quad, c *connection) {
	t.conns[q] = c
}

func (t *connTable) len() int {
	return len(t.conns)
}
