// SPDX-License-Identifier: MIT
package udp

import (
	"bytes"
	"encoding/binary"
	"sync"

	"spectra/spectrum"
)

// Packet layout, little-endian:
//
//	uint32  magic "SPE1"
//	uint32  sequence number
//	uint16  channel count
//	uint16  bins per channel
//	then per channel, per bin: float32 volume, float32 freq
const packetMagic uint32 = 0x53504531

// Transport packs spectrum frames into binary datagrams over a Sender.
type Transport struct {
	sender *Sender

	mu       sync.Mutex
	sequence uint32
	packet   bytes.Buffer // reused between frames
}

// NewTransport wraps sender.
func NewTransport(sender *Sender) *Transport {
	return &Transport{sender: sender}
}

// Send packs and transmits one frame. Ragged frames are sized by their
// first channel; missing bins are sent as zeroes.
func (t *Transport) Send(frame [][]spectrum.Frequency) error {
	if len(frame) == 0 {
		return nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	bins := len(frame[0])
	t.packet.Reset()
	binary.Write(&t.packet, binary.LittleEndian, packetMagic)
	binary.Write(&t.packet, binary.LittleEndian, t.sequence)
	binary.Write(&t.packet, binary.LittleEndian, uint16(len(frame)))
	binary.Write(&t.packet, binary.LittleEndian, uint16(bins))
	t.sequence++

	for _, channel := range frame {
		for i := 0; i < bins; i++ {
			var volume, freq float32
			if i < len(channel) {
				volume = float32(channel[i].Volume)
				freq = float32(channel[i].Freq)
			}
			binary.Write(&t.packet, binary.LittleEndian, volume)
			binary.Write(&t.packet, binary.LittleEndian, freq)
		}
	}

	return t.sender.Send(t.packet.Bytes())
}

// Close closes the underlying sender.
func (t *Transport) Close() error {
	return t.sender.Close()
}
