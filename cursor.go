package rebridge

// ScanBatch is one SCAN round trip: the next cursor position and the
// members it returned. A zero cursor marks the end of the iteration.
type ScanBatch struct {
	Cursor  uint64
	Members [][]byte
}

// ScanFunc fetches the batch at the given cursor position.
type ScanFunc func(cursor uint64) (ScanBatch, error)

// ScanCursor iterates the members of a SCAN-family command in the
// bufio.Scanner mold:
//
//	for cur.Next() {
//		use(cur.Member())
//	}
//	if err := cur.Err(); err != nil { ... }
//
// Batches are fetched lazily, one server round trip at a time. Empty
// batches with a nonzero cursor are skipped transparently.
type ScanCursor struct {
	scan    ScanFunc
	onClose func() error

	batch   [][]byte
	idx     int
	cursor  uint64
	started bool
	done    bool
	closed  bool
	err     error
}

// NewScanCursor returns a cursor driving scan from position 0. onClose,
// if non-nil, runs once when the cursor is closed; drivers use it to
// release the connection the scan is bound to.
func NewScanCursor(scan ScanFunc, onClose func() error) *ScanCursor {
	return &ScanCursor{scan: scan, onClose: onClose}
}

// Next advances to the next member, fetching batches as needed. It
// returns false at the end of the iteration, after Close, or once a
// fetch fails; Err tells the difference.
func (c *ScanCursor) Next() bool {
	if c.closed {
		c.err = ErrClosed
		return false
	}
	if c.err != nil {
		return false
	}
	if c.started {
		c.idx++
	}
	for c.idx >= len(c.batch) {
		if c.done {
			return false
		}
		batch, err := c.scan(c.cursor)
		if err != nil {
			c.err = err
			return false
		}
		c.cursor = batch.Cursor
		c.batch = batch.Members
		c.idx = 0
		c.done = batch.Cursor == 0
	}
	c.started = true
	return true
}

// Member returns the member Next advanced to.
func (c *ScanCursor) Member() []byte {
	if !c.started || c.idx >= len(c.batch) {
		return nil
	}
	return c.batch[c.idx]
}

// Err returns the first error hit while fetching batches.
func (c *ScanCursor) Err() error {
	return c.err
}

// Close stops the iteration and releases driver resources. It is safe to
// call more than once.
func (c *ScanCursor) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	if c.onClose != nil {
		return c.onClose()
	}
	return nil
}

// TupleScanBatch is one ZSCAN round trip.
type TupleScanBatch struct {
	Cursor uint64
	Tuples []Tuple
}

// TupleScanFunc fetches the tuple batch at the given cursor position.
type TupleScanFunc func(cursor uint64) (TupleScanBatch, error)

// TupleScanCursor is ScanCursor's shape for member/score pairs, used by
// ZSCAN.
type TupleScanCursor struct {
	scan    TupleScanFunc
	onClose func() error

	batch   []Tuple
	idx     int
	cursor  uint64
	started bool
	done    bool
	closed  bool
	err     error
}

// NewTupleScanCursor returns a cursor driving scan from position 0.
func NewTupleScanCursor(scan TupleScanFunc, onClose func() error) *TupleScanCursor {
	return &TupleScanCursor{scan: scan, onClose: onClose}
}

// Next advances to the next tuple, fetching batches as needed.
func (c *TupleScanCursor) Next() bool {
	if c.closed {
		c.err = ErrClosed
		return false
	}
	if c.err != nil {
		return false
	}
	if c.started {
		c.idx++
	}
	for c.idx >= len(c.batch) {
		if c.done {
			return false
		}
		batch, err := c.scan(c.cursor)
		if err != nil {
			c.err = err
			return false
		}
		c.cursor = batch.Cursor
		c.batch = batch.Tuples
		c.idx = 0
		c.done = batch.Cursor == 0
	}
	c.started = true
	return true
}

// Tuple returns the tuple Next advanced to.
func (c *TupleScanCursor) Tuple() Tuple {
	if !c.started || c.idx >= len(c.batch) {
		return Tuple{}
	}
	return c.batch[c.idx]
}

// Err returns the first error hit while fetching batches.
func (c *TupleScanCursor) Err() error {
	return c.err
}

// Close stops the iteration. It is safe to call more than once.
func (c *TupleScanCursor) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	if c.onClose != nil {
		return c.onClose()
	}
	return nil
}
