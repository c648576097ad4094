// SPDX-License-Identifier: Apache-2.0
// Copyright 2025-2026 The ipv6ddns Authors

package address

import (
	"encoding/binary"
	"fmt"
	"net"
	"sync"
	"unsafe"

	"golang.org/x/sys/unix"
)

// netlinkSource talks to the kernel's rtnetlink interface directly:
// a one-shot RTM_GETADDR dump, and a standing subscription to
// RTMGRP_IPV6_IFADDR for live add/delete notifications.
type netlinkSource struct {
	mu   sync.Mutex
	seq  uint32
	pid  uint32
	sock int
}

// NewLinuxSource opens a netlink socket. The socket is not bound to
// the multicast group until Events is called, so Dump alone never
// requires multicast permissions.
func NewLinuxSource() (Source, error) {
	fd, err := unix.Socket(unix.AF_NETLINK, unix.SOCK_RAW|unix.SOCK_CLOEXEC, unix.NETLINK_ROUTE)
	if err != nil {
		return nil, fmt.Errorf("open netlink socket: %w", err)
	}
	if err := unix.Bind(fd, &unix.SockaddrNetlink{Family: unix.AF_NETLINK}); err != nil {
		_ = unix.Close(fd)
		return nil, fmt.Errorf("bind netlink socket: %w", err)
	}
	sa, err := unix.Getsockname(fd)
	if err != nil {
		_ = unix.Close(fd)
		return nil, fmt.Errorf("getsockname netlink socket: %w", err)
	}
	nl, ok := sa.(*unix.SockaddrNetlink)
	if !ok {
		_ = unix.Close(fd)
		return nil, fmt.Errorf("unexpected netlink sockaddr type %T", sa)
	}
	return &netlinkSource{sock: fd, pid: nl.Pid}, nil
}

func (s *netlinkSource) Close() error {
	return unix.Close(s.sock)
}

func (s *netlinkSource) nextSeq() uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	return s.seq
}

// Dump issues RTM_GETADDR with NLM_F_DUMP and collects every
// RTM_NEWADDR reply until the kernel sends NLMSG_DONE.
func (s *netlinkSource) Dump() ([]IPv6Address, error) {
	seq := s.nextSeq()
	req := newGetAddrRequest(seq, s.pid)

	if err := unix.Sendto(s.sock, req, 0, &unix.SockaddrNetlink{Family: unix.AF_NETLINK}); err != nil {
		return nil, fmt.Errorf("send RTM_GETADDR: %w", err)
	}

	var out []IPv6Address
	buf := make([]byte, 65536)
	for {
		n, _, err := unix.Recvfrom(s.sock, buf, 0)
		if err != nil {
			return nil, fmt.Errorf("recv netlink dump: %w", err)
		}
		msgs, err := unix.ParseNetlinkMessage(buf[:n])
		if err != nil {
			return nil, fmt.Errorf("parse netlink dump: %w", err)
		}
		done := false
		for _, m := range msgs {
			if m.Header.Seq != seq {
				continue
			}
			switch m.Header.Type {
			case unix.NLMSG_DONE:
				done = true
			case unix.NLMSG_ERROR:
				return nil, fmt.Errorf("netlink dump error response")
			case unix.RTM_NEWADDR:
				if addr, ok := parseIfAddrMsg(m); ok {
					out = append(out, addr)
				}
			}
		}
		if done {
			break
		}
	}
	return out, nil
}

// Events subscribes to RTMGRP_IPV6_IFADDR and translates each
// RTM_NEWADDR/RTM_DELADDR message into a delta. The returned channels
// are closed when the read loop exits, whether cleanly (socket
// closed) or on error (error sent first).
func (s *netlinkSource) Events() (<-chan delta, <-chan error, error) {
	if err := unix.Bind(s.sock, &unix.SockaddrNetlink{
		Family: unix.AF_NETLINK,
		Pid:    s.pid,
		Groups: unix.RTMGRP_IPV6_IFADDR,
	}); err != nil {
		return nil, nil, fmt.Errorf("subscribe to RTMGRP_IPV6_IFADDR: %w", err)
	}

	deltas := make(chan delta, 16)
	errs := make(chan error, 1)

	go func() {
		defer close(deltas)
		defer close(errs)
		buf := make([]byte, 65536)
		for {
			n, _, err := unix.Recvfrom(s.sock, buf, 0)
			if err != nil {
				if err == unix.EBADF || err == unix.EINVAL {
					return // socket closed by Close()
				}
				errs <- fmt.Errorf("recv netlink event: %w", err)
				return
			}
			msgs, err := unix.ParseNetlinkMessage(buf[:n])
			if err != nil {
				// A single malformed message is skipped without
				// being logged; it is not a socket-level failure.
				continue
			}
			for _, m := range msgs {
				switch m.Header.Type {
				case unix.RTM_NEWADDR:
					if addr, ok := parseIfAddrMsg(m); ok {
						deltas <- delta{addr: addr}
					}
				case unix.RTM_DELADDR:
					if addr, ok := parseIfAddrMsg(m); ok {
						deltas <- delta{addr: addr, deleted: true}
					}
				}
			}
		}
	}()

	return deltas, errs, nil
}

// newGetAddrRequest builds a minimal RTM_GETADDR | NLM_F_REQUEST |
// NLM_F_DUMP message with an AF_INET6-scoped ifaddrmsg payload.
func newGetAddrRequest(seq, pid uint32) []byte {
	hdr := unix.NlMsghdr{
		Len:   unix.NLMSG_HDRLEN + unix.SizeofIfAddrmsg,
		Type:  unix.RTM_GETADDR,
		Flags: unix.NLM_F_REQUEST | unix.NLM_F_DUMP,
		Seq:   seq,
		Pid:   pid,
	}
	ifam := unix.IfAddrmsg{Family: unix.AF_INET6}

	buf := make([]byte, hdr.Len)
	*(*unix.NlMsghdr)(unsafe.Pointer(&buf[0])) = hdr
	*(*unix.IfAddrmsg)(unsafe.Pointer(&buf[unix.NLMSG_HDRLEN])) = ifam
	return buf
}

// parseIfAddrMsg extracts an IPv6Address from a RTM_NEWADDR/RTM_DELADDR
// message. It returns ok=false for non-IPv6 or malformed messages,
// which the caller silently skips; no log line is written for them.
func parseIfAddrMsg(m unix.NetlinkMessage) (IPv6Address, bool) {
	if len(m.Data) < unix.SizeofIfAddrmsg {
		return IPv6Address{}, false
	}
	ifam := *(*unix.IfAddrmsg)(unsafe.Pointer(&m.Data[0]))
	if ifam.Family != unix.AF_INET6 {
		return IPv6Address{}, false
	}

	attrs, err := unix.ParseNetlinkRouteAttr(&m)
	if err != nil {
		return IPv6Address{}, false
	}

	addr := IPv6Address{
		Ifindex: int(ifam.Index),
		Scope:   Scope(ifam.Scope),
		Flags:   Flag(ifam.Flags),
	}
	if iface, err := net.InterfaceByIndex(addr.Ifindex); err == nil {
		addr.Interface = iface.Name
	}

	found := false
	for _, a := range attrs {
		switch a.Attr.Type {
		case unix.IFA_ADDRESS:
			if len(a.Value) == net.IPv6len {
				addr.IP = net.IP(append([]byte(nil), a.Value...))
				found = true
			}
		case unix.IFA_FLAGS:
			if len(a.Value) == 4 {
				addr.Flags = Flag(binary.NativeEndian.Uint32(a.Value))
			}
		}
	}
	if !found {
		return IPv6Address{}, false
	}
	return addr, true
}
