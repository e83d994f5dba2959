// SPDX-License-Identifier: MIT
package udp

import (
	"bytes"
	"encoding/binary"
	"net"
	"testing"
	"time"

	"spectra/spectrum"
)

type packetHeader struct {
	Magic    uint32
	Sequence uint32
	Channels uint16
	Bins     uint16
}

func listenLoopback(t *testing.T) *net.UDPConn {
	t.Helper()
	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func receivePacket(t *testing.T, conn *net.UDPConn) []byte {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	buf := make([]byte, 64*1024)
	n, _, err := conn.ReadFromUDP(buf)
	if err != nil {
		t.Fatalf("no datagram received: %v", err)
	}
	return buf[:n]
}

func TestTransportSend(t *testing.T) {
	listener := listenLoopback(t)

	sender, err := NewSender(listener.LocalAddr().String())
	if err != nil {
		t.Fatal(err)
	}
	tr := NewTransport(sender)
	defer tr.Close()

	frame := [][]spectrum.Frequency{
		{
			{Volume: 1.5, Freq: 440, Position: 0.1},
			{Volume: 0.25, Freq: 880, Position: 0.9},
		},
		{
			{Volume: 2.0, Freq: 440, Position: 0.1},
			{Volume: 0.5, Freq: 880, Position: 0.9},
		},
	}
	if err := tr.Send(frame); err != nil {
		t.Fatal(err)
	}

	packet := receivePacket(t, listener)
	r := bytes.NewReader(packet)

	var hdr packetHeader
	if err := binary.Read(r, binary.LittleEndian, &hdr); err != nil {
		t.Fatal(err)
	}
	if hdr.Magic != packetMagic {
		t.Fatalf("magic = %#x, expected %#x", hdr.Magic, packetMagic)
	}
	if hdr.Sequence != 0 {
		t.Errorf("first sequence = %d, expected 0", hdr.Sequence)
	}
	if hdr.Channels != 2 || hdr.Bins != 2 {
		t.Fatalf("header = %d channels x %d bins, expected 2x2", hdr.Channels, hdr.Bins)
	}

	var payload [8]float32
	if err := binary.Read(r, binary.LittleEndian, &payload); err != nil {
		t.Fatal(err)
	}
	want := [8]float32{1.5, 440, 0.25, 880, 2.0, 440, 0.5, 880}
	if payload != want {
		t.Errorf("payload = %v, expected %v", payload, want)
	}
	if r.Len() != 0 {
		t.Errorf("%d trailing bytes in packet", r.Len())
	}
}

func TestTransportSequenceIncrements(t *testing.T) {
	listener := listenLoopback(t)

	sender, err := NewSender(listener.LocalAddr().String())
	if err != nil {
		t.Fatal(err)
	}
	tr := NewTransport(sender)
	defer tr.Close()

	frame := [][]spectrum.Frequency{{{Volume: 1, Freq: 100}}}
	for want := uint32(0); want < 3; want++ {
		if err := tr.Send(frame); err != nil {
			t.Fatal(err)
		}
		packet := receivePacket(t, listener)

		var hdr packetHeader
		if err := binary.Read(bytes.NewReader(packet), binary.LittleEndian, &hdr); err != nil {
			t.Fatal(err)
		}
		if hdr.Sequence != want {
			t.Fatalf("sequence = %d, expected %d", hdr.Sequence, want)
		}
	}
}

func TestTransportRaggedFramePadsWithZeroes(t *testing.T) {
	listener := listenLoopback(t)

	sender, err := NewSender(listener.LocalAddr().String())
	if err != nil {
		t.Fatal(err)
	}
	tr := NewTransport(sender)
	defer tr.Close()

	// The second channel is one bin short; the packet is sized by the
	// first and the gap is zero-filled.
	frame := [][]spectrum.Frequency{
		{{Volume: 1, Freq: 100}, {Volume: 2, Freq: 200}},
		{{Volume: 3, Freq: 300}},
	}
	if err := tr.Send(frame); err != nil {
		t.Fatal(err)
	}

	packet := receivePacket(t, listener)
	r := bytes.NewReader(packet)

	var hdr packetHeader
	if err := binary.Read(r, binary.LittleEndian, &hdr); err != nil {
		t.Fatal(err)
	}
	if hdr.Bins != 2 {
		t.Fatalf("bins = %d, expected 2", hdr.Bins)
	}

	var payload [8]float32
	if err := binary.Read(r, binary.LittleEndian, &payload); err != nil {
		t.Fatal(err)
	}
	want := [8]float32{1, 100, 2, 200, 3, 300, 0, 0}
	if payload != want {
		t.Errorf("payload = %v, expected %v", payload, want)
	}
}

func TestTransportEmptyFrame(t *testing.T) {
	sender, err := NewSender("127.0.0.1:9")
	if err != nil {
		t.Fatal(err)
	}
	tr := NewTransport(sender)
	defer tr.Close()

	// Nothing to pack, nothing sent, no error.
	if err := tr.Send(nil); err != nil {
		t.Fatal(err)
	}
}

func TestSenderClosed(t *testing.T) {
	sender, err := NewSender("127.0.0.1:9")
	if err != nil {
		t.Fatal(err)
	}
	if err := sender.Close(); err != nil {
		t.Fatal(err)
	}
	if err := sender.Close(); err != nil {
		t.Fatalf("second Close = %v, expected nil", err)
	}
	if err := sender.Send([]byte{1}); err == nil {
		t.Fatal("Send on a closed sender did not fail")
	}
}
