package stealthmem

// Channel carries memory requests to the driver. Device is the production
// implementation.
type Channel interface {
	Call(cmd Command, req *Request) (int, error)
	Close() error
}

// Result is the outcome of a successful transaction.
type Result struct {
	Cmd    Command
	Target Target
	Count  int
	Data   []byte
}

// Transferred returns the part of the buffer covered by the transfer count.
func (r *Result) Transferred() []byte {
	n := r.Count
	if n < 0 {
		n = 0
	}
	if n > len(r.Data) {
		n = len(r.Data)
	}
	return r.Data[:n]
}

// Transfer performs one call of cmd with req on ch.
func Transfer(ch Channel, cmd Command, req *Request) (*Result, error) {
	n, err := ch.Call(cmd, req)
	if err != nil {
		return nil, err
	}

	return &Result{
		Cmd:    cmd,
		Target: req.Target(),
		Count:  n,
		Data:   req.Buffer(),
	}, nil
}

// ReadMemory reads size bytes at t through ch.
func ReadMemory(ch Channel, t Target, size uint) (*Result, error) {
	req, err := NewReadRequest(t, size)
	if err != nil {
		return nil, err
	}
	return Transfer(ch, Read, req)
}

// WriteMemory writes data at t through ch.
func WriteMemory(ch Channel, t Target, data []byte) (*Result, error) {
	return Transfer(ch, Write, NewWriteRequest(t, data))
}
