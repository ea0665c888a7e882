package portdb

import (
	"bufio"
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"io"
	"net"
	"strconv"
	"testing"
	"time"

	"golang.org/x/crypto/ssh"
)

// listen opens a loopback listener closed at the end of the test.
func listen(t *testing.T) net.Listener {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen() error = %v", err)
	}
	t.Cleanup(func() { l.Close() })
	return l
}

// startEcho serves a line echo on a loopback port, standing in for Redis.
func startEcho(t *testing.T) string {
	t.Helper()
	l := listen(t)
	go func() {
		for {
			c, err := l.Accept()
			if err != nil {
				return
			}
			go func() {
				defer c.Close()
				io.Copy(c, c)
			}()
		}
	}()
	return l.Addr().String()
}

// startSSHServer accepts password logins for admin/secret and serves
// direct-tcpip channels by dialing the requested address.
func startSSHServer(t *testing.T) string {
	t.Helper()
	_, key, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	signer, err := ssh.NewSignerFromKey(key)
	if err != nil {
		t.Fatal(err)
	}
	config := &ssh.ServerConfig{
		PasswordCallback: func(c ssh.ConnMetadata, pass []byte) (*ssh.Permissions, error) {
			if c.User() == "admin" && string(pass) == "secret" {
				return nil, nil
			}
			return nil, errors.New("denied")
		},
	}
	config.AddHostKey(signer)

	l := listen(t)
	go func() {
		for {
			nc, err := l.Accept()
			if err != nil {
				return
			}
			go serveSSHConn(nc, config)
		}
	}()
	return l.Addr().String()
}

func serveSSHConn(nc net.Conn, config *ssh.ServerConfig) {
	_, chans, reqs, err := ssh.NewServerConn(nc, config)
	if err != nil {
		nc.Close()
		return
	}
	go ssh.DiscardRequests(reqs)
	for nch := range chans {
		if nch.ChannelType() != "direct-tcpip" {
			nch.Reject(ssh.UnknownChannelType, "unsupported")
			continue
		}
		var req struct {
			Host     string
			Port     uint32
			OrigHost string
			OrigPort uint32
		}
		if err := ssh.Unmarshal(nch.ExtraData(), &req); err != nil {
			nch.Reject(ssh.ConnectionFailed, err.Error())
			continue
		}
		target, err := net.Dial("tcp", net.JoinHostPort(req.Host, strconv.Itoa(int(req.Port))))
		if err != nil {
			nch.Reject(ssh.ConnectionFailed, err.Error())
			continue
		}
		ch, creqs, err := nch.Accept()
		if err != nil {
			target.Close()
			continue
		}
		go ssh.DiscardRequests(creqs)
		go func() {
			io.Copy(target, ch)
			target.Close()
		}()
		go func() {
			io.Copy(ch, target)
			ch.Close()
		}()
	}
}

func dialTunnel(t *testing.T, remote string) *SSHTunnel {
	t.Helper()
	client, err := ssh.Dial("tcp", startSSHServer(t), clientConfig("admin", "secret"))
	if err != nil {
		t.Fatalf("ssh.Dial() error = %v", err)
	}
	tunnel, err := newTunnel(client, remote)
	if err != nil {
		t.Fatalf("newTunnel() error = %v", err)
	}
	return tunnel
}

func TestSSHTunnelForwards(t *testing.T) {
	tunnel := dialTunnel(t, startEcho(t))

	for i := 0; i < 2; i++ {
		conn, err := net.Dial("tcp", tunnel.LocalAddr())
		if err != nil {
			t.Fatalf("Dial(%s) error = %v", tunnel.LocalAddr(), err)
		}
		conn.SetDeadline(time.Now().Add(5 * time.Second))
		if _, err := io.WriteString(conn, "PING\n"); err != nil {
			t.Fatalf("write error = %v", err)
		}
		line, err := bufio.NewReader(conn).ReadString('\n')
		if err != nil {
			t.Fatalf("read error = %v", err)
		}
		if line != "PING\n" {
			t.Errorf("connection %d echoed %q, want PING", i, line)
		}
		conn.Close()
	}

	if err := tunnel.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if _, err := net.DialTimeout("tcp", tunnel.LocalAddr(), time.Second); err == nil {
		t.Error("local port still accepting after Close()")
	}
}

func TestSSHTunnelRemoteDown(t *testing.T) {
	dead := listen(t)
	addr := dead.Addr().String()
	dead.Close()

	tunnel := dialTunnel(t, addr)
	defer tunnel.Close()

	conn, err := net.Dial("tcp", tunnel.LocalAddr())
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(5 * time.Second))
	buf := make([]byte, 1)
	if _, err := conn.Read(buf); err != io.EOF {
		t.Errorf("Read() error = %v, want EOF when the remote cannot be reached", err)
	}
}

func TestSSHTunnelBadPassword(t *testing.T) {
	if _, err := ssh.Dial("tcp", startSSHServer(t), clientConfig("admin", "wrong")); err == nil {
		t.Error("ssh.Dial() with a wrong password expected error")
	}
}
