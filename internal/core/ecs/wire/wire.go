// Package wire implements the length-delimited CRDT message codec:
// every message is framed by an 8-byte header (u32 total length
// including the header, u32 message type) followed by a type-specific
// body, and a stream of messages is simply those frames concatenated.
package wire

import (
	"fmt"

	"scenecore/internal/core/ecs"
	"scenecore/internal/core/ecs/buffer"
)

// Type is the message kind carried in a frame's header.
type Type uint32

const (
	PutComponent    Type = 1
	DeleteComponent Type = 2
	DeleteEntity    Type = 3
	AppendValue     Type = 4
)

const headerSize = 8

// Message is the decoded form of one wire frame. Component, Timestamp,
// and Payload are meaningful only for the component-carrying types;
// DeleteEntity leaves them zero. Timestamp travels on the wire as a u32
// (spec §4.F); crdtengine widens/narrows at the boundary to its 64-bit
// Lamport clock.
type Message struct {
	Type      Type
	Entity    ecs.EntityID
	Component uint32
	Timestamp uint32
	Payload   []byte
}

// Encode appends msg's wire frame to buf. Component-carrying bodies lay
// out entity, componentId, timestamp, dataLength, then data, exactly as
// spec §4.F's body layout documents; DELETE_COMPONENT carries a
// dataLength of zero and no data, matching the empty-tombstone-payload
// convention.
func Encode(buf *buffer.Buffer, msg Message) error {
	body := buffer.New()
	switch msg.Type {
	case PutComponent, AppendValue:
		body.WriteU32(uint32(msg.Entity))
		body.WriteU32(msg.Component)
		body.WriteU32(msg.Timestamp)
		body.WriteU32(uint32(len(msg.Payload)))
		body.WriteRaw(msg.Payload)
	case DeleteComponent:
		body.WriteU32(uint32(msg.Entity))
		body.WriteU32(msg.Component)
		body.WriteU32(msg.Timestamp)
		body.WriteU32(0)
	case DeleteEntity:
		body.WriteU32(uint32(msg.Entity))
	default:
		return fmt.Errorf("wire: unknown message type %d", msg.Type)
	}

	total := headerSize + body.Len()
	buf.WriteU32(uint32(total))
	buf.WriteU32(uint32(msg.Type))
	buf.WriteRaw(body.Bytes())
	return nil
}

// DecodeStream decodes every complete frame in buf, in order. A frame
// whose declared length exceeds the bytes remaining is left unconsumed
// (the buffer's read cursor rewinds to the start of that frame) so the
// caller can retry once more bytes arrive, matching the partial-message
// handling spec §4.F requires for a streaming transport.
func DecodeStream(buf *buffer.Buffer) ([]Message, error) {
	var messages []Message
	for {
		frameStart := buf.Remaining()
		if frameStart < headerSize {
			break
		}
		peeked := buf.PeekRemaining()
		length := readU32LE(peeked)
		if frameStart < int(length) {
			break
		}

		msg, err := decodeOne(buf, length)
		if err != nil {
			return messages, err
		}
		messages = append(messages, msg)
	}
	return messages, nil
}

func decodeOne(buf *buffer.Buffer, length uint32) (Message, error) {
	totalLen, err := buf.ReadU32()
	if err != nil {
		return Message{}, err
	}
	rawType, err := buf.ReadU32()
	if err != nil {
		return Message{}, err
	}
	bodyLen := int(totalLen) - headerSize
	if bodyLen < 0 {
		return Message{}, fmt.Errorf("wire: frame length %d shorter than header", totalLen)
	}
	body, err := buf.ReadRaw(bodyLen)
	if err != nil {
		return Message{}, err
	}
	_ = length

	bodyBuf := buffer.FromBytes(body)
	msg := Message{Type: Type(rawType)}
	switch msg.Type {
	case PutComponent, AppendValue:
		entity, err := bodyBuf.ReadU32()
		if err != nil {
			return Message{}, err
		}
		component, err := bodyBuf.ReadU32()
		if err != nil {
			return Message{}, err
		}
		ts, err := bodyBuf.ReadU32()
		if err != nil {
			return Message{}, err
		}
		dataLength, err := bodyBuf.ReadU32()
		if err != nil {
			return Message{}, err
		}
		data, err := bodyBuf.ReadRaw(int(dataLength))
		if err != nil {
			return Message{}, err
		}
		msg.Entity = ecs.EntityID(entity)
		msg.Component = component
		msg.Timestamp = ts
		msg.Payload = data
	case DeleteComponent:
		entity, err := bodyBuf.ReadU32()
		if err != nil {
			return Message{}, err
		}
		component, err := bodyBuf.ReadU32()
		if err != nil {
			return Message{}, err
		}
		ts, err := bodyBuf.ReadU32()
		if err != nil {
			return Message{}, err
		}
		dataLength, err := bodyBuf.ReadU32()
		if err != nil {
			return Message{}, err
		}
		if dataLength > 0 {
			if _, err := bodyBuf.ReadRaw(int(dataLength)); err != nil {
				return Message{}, err
			}
		}
		msg.Entity = ecs.EntityID(entity)
		msg.Component = component
		msg.Timestamp = ts
	case DeleteEntity:
		entity, err := bodyBuf.ReadU32()
		if err != nil {
			return Message{}, err
		}
		msg.Entity = ecs.EntityID(entity)
	default:
		// Unknown message type: skip it rather than fail the stream, so a
		// newer peer's additions don't break an older one (spec §4.F).
		return Message{Type: msg.Type}, nil
	}
	return msg, nil
}

func readU32LE(b []byte) uint32 {
	if len(b) < 4 {
		return 0
	}
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}
