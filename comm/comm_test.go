package comm_test

import (
	"bytes"
	"io"
	"log"
	"net"
	"testing"
	"time"

	"github.com/ifgw-pl/golabspec/comm"
)

func tcpEchoServer(t *testing.T) string {
	ln, err := net.Listen("tcp", "localhost:0")
	if err != nil {
		t.Fatal("could not listen, test aborted")
	}
	t.Cleanup(func() { ln.Close() })
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go func() { io.Copy(conn, conn) }()
		}
	}()
	return ln.Addr().String()
}

func TestPoolHandsOutToCapacity(t *testing.T) {
	addr := tcpEchoServer(t)
	maker := func() (io.ReadWriteCloser, error) {
		return net.Dial("tcp", addr)
	}
	pool := comm.NewPool(3, time.Second, maker)
	for i := 0; i < 3; i++ {
		conn, err := pool.Get()
		if err != nil {
			t.Fatal("could not get connection:", err)
		}
		if conn == nil {
			t.Fatal("pool handed out a nil connection")
		}
	}
	if pool.Active() != 3 {
		t.Errorf("expected 3 leased connections, got %d", pool.Active())
	}
}

func TestPoolReusesReturnedConns(t *testing.T) {
	addr := tcpEchoServer(t)
	made := 0
	maker := func() (io.ReadWriteCloser, error) {
		made++
		return net.Dial("tcp", addr)
	}
	pool := comm.NewPool(3, time.Minute, maker)
	for i := 0; i < 3; i++ {
		conn, err := pool.Get()
		if err != nil {
			t.Fatal("could not get connection:", err)
		}
		pool.Put(conn)
	}
	if made != 1 {
		t.Errorf("expected a single connection to be made and reused, %d were made", made)
	}
	if pool.Size() != 1 {
		t.Errorf("expected pool size of 1, got %d", pool.Size())
	}
}

func TestPoolMaintainsSizeWhenExhausted(t *testing.T) {
	addr := tcpEchoServer(t)
	maker := func() (io.ReadWriteCloser, error) {
		return net.Dial("tcp", addr)
	}
	pool := comm.NewPool(2, time.Second, maker)
	held := []io.ReadWriter{}
	for i := 0; i < 2; i++ {
		rw, err := pool.Get()
		if err != nil {
			log.Fatal("could not get connection:", err)
		}
		held = append(held, rw)
	}
	newConn := make(chan io.ReadWriter, 1)
	// now that they are all taken out, try to get a new one
	go func() {
		rw, _ := pool.Get()
		newConn <- rw
	}()
	select {
	case <-newConn:
		t.Fatal("failed to prevent pool overflow")
	case <-time.After(100 * time.Millisecond):
	}
	pool.Put(held[0])
	select {
	case <-newConn:
	case <-time.After(time.Second):
		t.Fatal("returned connection was not handed to the waiter")
	}
}

type lineBuffer struct {
	in  bytes.Buffer
	out bytes.Buffer
}

func (l *lineBuffer) Read(p []byte) (int, error)  { return l.in.Read(p) }
func (l *lineBuffer) Write(p []byte) (int, error) { return l.out.Write(p) }

func TestTerminatorAppendsOnWrite(t *testing.T) {
	lb := &lineBuffer{}
	term := comm.NewTerminator(lb, '\n', '\r')
	n, err := term.Write([]byte("KRDG? B"))
	if err != nil {
		t.Fatal(err)
	}
	if n != 7 {
		t.Errorf("expected write count to exclude the terminator, got %d", n)
	}
	if got := lb.out.String(); got != "KRDG? B\r" {
		t.Errorf("expected terminated command on the wire, got %q", got)
	}
}

func TestTerminatorStripsOnRead(t *testing.T) {
	lb := &lineBuffer{}
	lb.in.WriteString("+2.95E+2\n")
	term := comm.NewTerminator(lb, '\n', '\r')
	buf := make([]byte, 64)
	n, err := term.Read(buf)
	if err != nil {
		t.Fatal(err)
	}
	if got := string(buf[:n]); got != "+2.95E+2" {
		t.Errorf("expected terminator to be stripped, got %q", got)
	}
}
