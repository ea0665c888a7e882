package portdb

import (
	"fmt"
	"io"
	"net"
	"sync"

	"golang.org/x/crypto/ssh"

	"github.com/newtron-network/lanemap/pkg/util"
)

// RedisRemoteAddr is where Redis listens inside a SONiC switch.
const RedisRemoteAddr = "127.0.0.1:6379"

// SSHTunnel forwards a local TCP port to a remote address through an SSH
// connection. Used to reach Redis inside a switch, which is not exposed on
// the management network.
type SSHTunnel struct {
	localAddr  string // "127.0.0.1:<port>"
	remoteAddr string
	sshClient  *ssh.Client
	listener   net.Listener
	done       chan struct{}
	wg         sync.WaitGroup
}

// NewSSHTunnel dials SSH on host:22 and opens a local listener on a random port.
// Connections to the local port are forwarded to RedisRemoteAddr on the host.
func NewSSHTunnel(host, user, pass string) (*SSHTunnel, error) {
	sshClient, err := ssh.Dial("tcp", net.JoinHostPort(host, "22"), clientConfig(user, pass))
	if err != nil {
		return nil, fmt.Errorf("SSH dial %s: %w", host, err)
	}
	return newTunnel(sshClient, RedisRemoteAddr)
}

func clientConfig(user, pass string) *ssh.ClientConfig {
	return &ssh.ClientConfig{
		User: user,
		Auth: []ssh.AuthMethod{
			ssh.Password(pass),
		},
		// Lab switches regenerate host keys on every image install.
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
	}
}

func newTunnel(sshClient *ssh.Client, remote string) (*SSHTunnel, error) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		sshClient.Close()
		return nil, fmt.Errorf("local listen: %w", err)
	}

	t := &SSHTunnel{
		localAddr:  listener.Addr().String(),
		remoteAddr: remote,
		sshClient:  sshClient,
		listener:   listener,
		done:       make(chan struct{}),
	}

	t.wg.Add(1)
	go t.acceptLoop()

	util.WithField("local", t.localAddr).Debugf("tunnel to %s open", remote)
	return t, nil
}

// LocalAddr returns the local address (e.g. "127.0.0.1:54321") that forwards
// to Redis inside the SSH host.
func (t *SSHTunnel) LocalAddr() string {
	return t.localAddr
}

// Close stops the listener, closes the SSH connection, and waits for
// all forwarding goroutines to finish.
func (t *SSHTunnel) Close() error {
	close(t.done)
	t.listener.Close()
	t.wg.Wait()
	return t.sshClient.Close()
}

func (t *SSHTunnel) acceptLoop() {
	defer t.wg.Done()
	for {
		local, err := t.listener.Accept()
		if err != nil {
			select {
			case <-t.done:
				return
			default:
				continue
			}
		}
		t.wg.Add(1)
		go t.forward(local)
	}
}

func (t *SSHTunnel) forward(local net.Conn) {
	defer t.wg.Done()
	defer local.Close()

	remote, err := t.sshClient.Dial("tcp", t.remoteAddr)
	if err != nil {
		util.Debugf("tunnel dial %s: %v", t.remoteAddr, err)
		return
	}
	defer remote.Close()

	done := make(chan struct{}, 2)
	go func() {
		io.Copy(remote, local)
		done <- struct{}{}
	}()
	go func() {
		io.Copy(local, remote)
		done <- struct{}{}
	}()
	<-done
}
