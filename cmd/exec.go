package cmd

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
	"time"
	"unsafe"

	"github.com/urfave/cli"

	e "stealthmem/error"
	"stealthmem/pkg/logflags"
	"stealthmem/pkg/resolve"
	"stealthmem/pkg/stealthmem"
	"stealthmem/pkg/terminal"
	"stealthmem/utils"
)

type ExecType int

const (
	Read ExecType = iota
	Write
	Bench
	SelfTest
	Shell
)

const (
	benchValue uint64 = 0x1234567890abcdef

	selfTestSource      = "hello world\x00"
	selfTestReplacement = "goodbye, me\x00"
)

// Memory the driver is pointed at by bench and selftest. Package level
// variables have a fixed address, unlike locals the stack may move.
var (
	benchTarget  uint64
	selfTestArea [len(selfTestSource)]byte
)

// openChannel opens the control device. Tests replace it with a stub.
var openChannel = func(path string) (stealthmem.Channel, error) {
	d, err := stealthmem.Open(path)
	if err != nil {
		return nil, err
	}
	return d, nil
}

type executor struct {
	et  ExecType
	ctx *cli.Context
	s   *settings
	log logflags.Logger
}

func newExecutor(et ExecType, ctx *cli.Context) *executor {
	return &executor{
		et:  et,
		ctx: ctx,
		s:   settingsFrom(ctx),
		log: logflags.CLILogger(),
	}
}

func (ex *executor) run() error {
	switch ex.et {
	case Read:
		return ex.read()
	case Write:
		return ex.write()
	case Bench:
		return ex.bench()
	case SelfTest:
		return ex.selfTest()
	case Shell:
		return ex.shell()
	}

	return nil
}

func exec(et ExecType, ctx *cli.Context) error {
	ex := newExecutor(et, ctx)
	return ex.run()
}

func (ex *executor) open() (stealthmem.Channel, error) {
	ex.log.Debugf("opening %s", ex.s.conf.Device)
	return openChannel(ex.s.conf.Device)
}

func (ex *executor) read() error {
	args := ex.ctx.Args()
	a, err := resolve.Parse(args.Get(0), args.Get(1), args.Get(2))
	if err != nil {
		return err
	}
	ex.checkPid(a.Pid)

	req, err := stealthmem.NewReadRequest(stealthmem.Target{Pid: a.Pid, Address: a.Address}, a.Size)
	if err != nil {
		return err
	}

	return ex.transfer(stealthmem.Read, req)
}

func (ex *executor) write() error {
	args := ex.ctx.Args()
	pid, err := resolve.Pid(args.Get(0))
	if err != nil {
		return err
	}
	addr, err := resolve.Address(args.Get(1))
	if err != nil {
		return err
	}
	data, err := resolve.Payload(args.Get(2))
	if err != nil {
		return err
	}
	ex.checkPid(pid)

	req := stealthmem.NewWriteRequest(stealthmem.Target{Pid: pid, Address: addr}, data)
	return ex.transfer(stealthmem.Write, req)
}

// transfer opens the device, performs exactly one call and reports it.
func (ex *executor) transfer(cmd stealthmem.Command, req *stealthmem.Request) error {
	ch, err := ex.open()
	if err != nil {
		return err
	}
	defer ch.Close()

	res, err := stealthmem.Transfer(ch, cmd, req)
	if err != nil {
		return err
	}

	utils.PrintResult(ex.s.stdout, res, ex.s.color)
	return nil
}

// bench times repeated READ calls of an 8-byte value in this process over a
// single open device.
func (ex *executor) bench() error {
	count := ex.ctx.Int("count")
	if count <= 0 {
		count = ex.s.conf.BenchCount
	}

	benchTarget = benchValue
	expected := make([]byte, 8)
	binary.NativeEndian.PutUint64(expected, benchValue)

	// The same request is reused for every call: each one reads the same
	// bytes into the same buffer.
	req := stealthmem.NewRequest(stealthmem.Target{
		Pid:     int32(os.Getpid()),
		Address: uint64(uintptr(unsafe.Pointer(&benchTarget))),
	}, make([]byte, len(expected)))

	ch, err := ex.open()
	if err != nil {
		return err
	}
	defer ch.Close()

	start := time.Now()
	for i := 0; i < count; i++ {
		if _, err := ch.Call(stealthmem.Read, req); err != nil {
			return err
		}
	}
	elapsed := time.Since(start)

	if !bytes.Equal(req.Buffer(), expected) {
		return e.Newf(e.TransferFailed, "bench read %x, expected %x", req.Buffer(), expected)
	}

	fmt.Fprintf(ex.s.stdout, "syscall: %d calls in %v, %v/op\n", count, elapsed, elapsed/time.Duration(count))
	return nil
}

// selfTest reads a known string out of this process and then overwrites it.
func (ex *executor) selfTest() error {
	copy(selfTestArea[:], selfTestSource)
	source := selfTestArea[:]
	replacement := []byte(selfTestReplacement)
	target := stealthmem.Target{
		Pid:     int32(os.Getpid()),
		Address: uint64(uintptr(unsafe.Pointer(&source[0]))),
	}

	ch, err := ex.open()
	if err != nil {
		return err
	}
	defer ch.Close()

	res, err := stealthmem.ReadMemory(ch, target, uint(len(source)))
	if err != nil {
		return err
	}
	utils.PrintResult(ex.s.stdout, res, ex.s.color)
	if !bytes.Equal(res.Transferred(), source) {
		return e.Newf(e.TransferFailed, "self test read %q, expected %q", res.Transferred(), source)
	}

	res, err = stealthmem.WriteMemory(ch, target, replacement)
	if err != nil {
		return err
	}
	utils.PrintResult(ex.s.stdout, res, ex.s.color)
	if !bytes.Equal(source, replacement) {
		return e.Newf(e.TransferFailed, "self test memory holds %q after write, expected %q", source, replacement)
	}

	fmt.Fprintln(ex.s.stdout, "stealthmem test success")
	return nil
}

func (ex *executor) shell() error {
	ch, err := ex.open()
	if err != nil {
		return err
	}
	defer ch.Close()

	term := terminal.New(ch, ex.s.conf, ex.s.stdout, ex.s.stderr, ex.s.color)
	return term.Run()
}

// checkPid only logs: whether the pid is valid is up to the driver.
func (ex *executor) checkPid(pid int32) {
	if !utils.CheckPid(pid) {
		ex.log.Debugf("pid %d has no /proc entry", pid)
	}
}
