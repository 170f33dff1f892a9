// Package resource keeps listening sockets open for the lifetime of the hestia
// process so that supervised children can be restarted without dropping them.
package resource

import (
	"fmt"
	"net"
	"os"
	"sort"
	"sync"
	"syscall"

	"github.com/turtacn/hestia/pkg/logger"
)

// SocketManager owns TCP listeners keyed by the address they were requested with.
type SocketManager struct {
	mu sync.Mutex

	listeners map[string]net.Listener
	files     map[string]*os.File
}

// Default is the process-wide manager. Unit instances are rebuilt on every
// restart, so sockets that must survive a restart live here.
var Default = NewSocketManager()

func NewSocketManager() *SocketManager {
	return &SocketManager{
		listeners: make(map[string]net.Listener),
		files:     make(map[string]*os.File),
	}
}

// EnsureListener returns the listener for addr, binding it on first use.
func (sm *SocketManager) EnsureListener(addr string) (net.Listener, error) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	return sm.ensure(addr)
}

func (sm *SocketManager) ensure(addr string) (net.Listener, error) {
	if l, ok := sm.listeners[addr]; ok {
		return l, nil
	}

	logger.Log.Info("Socket: binding listener", "addr", addr)
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	tcpL, ok := l.(*net.TCPListener)
	if !ok {
		l.Close()
		return nil, fmt.Errorf("listener for %s is not a TCP listener", addr)
	}
	f, err := tcpL.File()
	if err != nil {
		l.Close()
		return nil, err
	}

	// File() leaves the socket in blocking mode
	if rawConn, err := tcpL.SyscallConn(); err == nil {
		_ = rawConn.Control(func(fd uintptr) {
			_ = syscall.SetNonblock(int(fd), true)
		})
	}

	sm.listeners[addr] = l
	sm.files[addr] = f
	return l, nil
}

// Files returns the held descriptor of each address, in the order given, binding
// any address not yet held. The files stay owned by the manager; pass them to
// exec.Cmd.ExtraFiles but do not close them.
func (sm *SocketManager) Files(addrs ...string) ([]*os.File, error) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	files := make([]*os.File, 0, len(addrs))
	for _, addr := range addrs {
		if _, err := sm.ensure(addr); err != nil {
			return nil, fmt.Errorf("listen %s: %w", addr, err)
		}
		files = append(files, sm.files[addr])
	}
	return files, nil
}

// Addrs returns the held addresses, sorted.
func (sm *SocketManager) Addrs() []string {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	addrs := make([]string, 0, len(sm.listeners))
	for addr := range sm.listeners {
		addrs = append(addrs, addr)
	}
	sort.Strings(addrs)
	return addrs
}

// Close releases every held socket.
func (sm *SocketManager) Close() {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	for addr, l := range sm.listeners {
		l.Close()
		if f, ok := sm.files[addr]; ok {
			f.Close()
		}
	}
	sm.listeners = make(map[string]net.Listener)
	sm.files = make(map[string]*os.File)
}

// Personal.AI order the ending
