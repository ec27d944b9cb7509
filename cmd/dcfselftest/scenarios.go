package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/ksuid"

	"github.com/ALH477/dcf-serializer/internal/config"
	"github.com/ALH477/dcf-serializer/internal/observability"
	"github.com/ALH477/dcf-serializer/pkg/dcfcodec"
)

// ScenarioResult is the outcome of running one named scenario.
type ScenarioResult struct {
	Name     string
	OK       bool
	Err      error
	Bytes    int
	Duration time.Duration
}

// runScenario dispatches on name to one of the built-in scenario bodies,
// recording encode/decode metrics along the way.
func runScenario(cfg config.ScenarioConfig) ScenarioResult {
	start := time.Now()
	seq := ksuid.New()

	var (
		buf []byte
		err error
	)
	switch cfg.Name {
	case "primitive-roundtrip":
		buf, err = scenarioPrimitives(cfg, seq)
	case "array-of-u32":
		buf, err = scenarioArray(cfg, seq)
	case "nested-struct":
		buf, err = scenarioNestedStruct(cfg, seq)
	case "no-crc":
		buf, err = scenarioNoCRC(cfg, seq)
	case "borrowed-buffer-overflow":
		err = scenarioBorrowedOverflow(cfg)
	case "depth-exceeded":
		err = scenarioDepthExceeded(cfg)
	default:
		err = fmt.Errorf("unknown scenario %q", cfg.Name)
	}

	duration := time.Since(start)
	observability.RecordEncode(cfg.MsgType, err == nil, duration)
	return ScenarioResult{Name: cfg.Name, OK: err == nil, Err: err, Bytes: len(buf), Duration: duration}
}

func scenarioPrimitives(cfg config.ScenarioConfig, seq ksuid.KSUID) ([]byte, error) {
	w := dcfcodec.NewWriter(cfg.MsgType, dcfcodec.Flags(cfg.Flags))
	w.SetSequence(uint32(seq.Time().Unix()))

	id := uuid.New()
	var raw [16]byte
	copy(raw[:], id[:])

	if err := w.WriteBool(true); err != nil {
		return nil, err
	}
	if err := w.WriteI64(-12345); err != nil {
		return nil, err
	}
	if err := w.WriteF64(2.718281828); err != nil {
		return nil, err
	}
	if err := w.WriteString("dcfselftest"); err != nil {
		return nil, err
	}
	if err := w.WriteUUID(raw); err != nil {
		return nil, err
	}
	buf, err := w.Finish()
	if err != nil {
		return nil, err
	}
	return buf, decodeAndVerify(buf, func(r *dcfcodec.Reader) error {
		if _, err := r.ReadBool(); err != nil {
			return err
		}
		if _, err := r.ReadI64(); err != nil {
			return err
		}
		if _, err := r.ReadF64(); err != nil {
			return err
		}
		if _, err := r.ReadString(); err != nil {
			return err
		}
		if _, err := r.ReadUUID(); err != nil {
			return err
		}
		if !r.AtEnd() {
			return errors.New("primitive-roundtrip: trailing bytes after decode")
		}
		return nil
	})
}

func scenarioArray(cfg config.ScenarioConfig, seq ksuid.KSUID) ([]byte, error) {
	w := dcfcodec.NewWriter(cfg.MsgType, dcfcodec.Flags(cfg.Flags))
	w.SetSequence(uint32(seq.Time().Unix()))

	const n = 16
	if err := w.ArrayBegin(dcfcodec.TypeU32, n); err != nil {
		return nil, err
	}
	for i := uint32(0); i < n; i++ {
		if err := w.WriteU32(i * i); err != nil {
			return nil, err
		}
	}
	if err := w.ArrayEnd(); err != nil {
		return nil, err
	}
	buf, err := w.Finish()
	if err != nil {
		return nil, err
	}
	return buf, decodeAndVerify(buf, func(r *dcfcodec.Reader) error {
		_, count, err := r.ArrayBegin()
		if err != nil {
			return err
		}
		for i := uint32(0); i < count; i++ {
			v, err := r.ReadU32()
			if err != nil {
				return err
			}
			if v != i*i {
				return fmt.Errorf("array-of-u32: element %d = %d, want %d", i, v, i*i)
			}
		}
		return r.ArrayEnd()
	})
}

func scenarioNestedStruct(cfg config.ScenarioConfig, seq ksuid.KSUID) ([]byte, error) {
	w := dcfcodec.NewWriter(cfg.MsgType, dcfcodec.Flags(cfg.Flags))
	w.SetSequence(uint32(seq.Time().Unix()))

	if err := w.StructBegin(1); err != nil {
		return nil, err
	}
	if err := w.WriteField(1, dcfcodec.TypeString); err != nil {
		return nil, err
	}
	if err := w.WriteString("outer"); err != nil {
		return nil, err
	}
	if err := w.WriteField(2, dcfcodec.TypeStruct); err != nil {
		return nil, err
	}
	if err := w.StructBegin(2); err != nil {
		return nil, err
	}
	if err := w.WriteField(1, dcfcodec.TypeU32); err != nil {
		return nil, err
	}
	if err := w.WriteU32(7); err != nil {
		return nil, err
	}
	if err := w.StructEnd(); err != nil {
		return nil, err
	}
	if err := w.StructEnd(); err != nil {
		return nil, err
	}

	buf, err := w.Finish()
	if err != nil {
		return nil, err
	}
	return buf, decodeAndVerify(buf, func(r *dcfcodec.Reader) error {
		if _, err := r.StructBegin(); err != nil {
			return err
		}
		for {
			id, tag, err := r.ReadField()
			if err != nil {
				if errors.Is(err, dcfcodec.ErrNotFound) {
					break
				}
				return err
			}
			switch id {
			case 1:
				if _, err := r.ReadString(); err != nil {
					return err
				}
			case 2:
				if _, err := r.StructBegin(); err != nil {
					return err
				}
				for {
					innerID, innerTag, err := r.ReadField()
					if err != nil {
						if errors.Is(err, dcfcodec.ErrNotFound) {
							break
						}
						return err
					}
					if innerID == 1 {
						if _, err := r.ReadU32(); err != nil {
							return err
						}
					} else if err := r.SkipValue(innerTag); err != nil {
						return err
					}
				}
				if err := r.StructEnd(); err != nil {
					return err
				}
			default:
				if err := r.SkipValue(tag); err != nil {
					return err
				}
			}
		}
		return r.StructEnd()
	})
}

func scenarioNoCRC(cfg config.ScenarioConfig, seq ksuid.KSUID) ([]byte, error) {
	w := dcfcodec.NewWriter(cfg.MsgType, dcfcodec.FlagNoCRC)
	w.SetSequence(uint32(seq.Time().Unix()))
	if err := w.WriteString("no trailer"); err != nil {
		return nil, err
	}
	buf, err := w.Finish()
	if err != nil {
		return nil, err
	}
	return buf, decodeAndVerify(buf, func(r *dcfcodec.Reader) error {
		if r.CRCVerified() {
			return errors.New("no-crc: expected CRC not verified")
		}
		_, err := r.ReadString()
		return err
	})
}

func scenarioBorrowedOverflow(cfg config.ScenarioConfig) error {
	small := make([]byte, dcfcodec.HeaderSize+4)
	w, err := dcfcodec.NewWriterBuffer(small, cfg.MsgType, dcfcodec.FlagNoCRC)
	if err != nil {
		return err
	}
	if err := w.WriteString("too long for this buffer by design"); !errors.Is(err, dcfcodec.ErrBufferFull) {
		return fmt.Errorf("borrowed-buffer-overflow: expected ErrBufferFull, got %v", err)
	}
	return nil
}

func scenarioDepthExceeded(cfg config.ScenarioConfig) error {
	w := dcfcodec.NewWriter(cfg.MsgType, 0)
	for i := 0; i < dcfcodec.MaxDepth; i++ {
		if err := w.ArrayBegin(dcfcodec.TypeArray, 1); err != nil {
			return err
		}
	}
	if err := w.ArrayBegin(dcfcodec.TypeArray, 1); !errors.Is(err, dcfcodec.ErrDepthExceeded) {
		return fmt.Errorf("depth-exceeded: expected ErrDepthExceeded, got %v", err)
	}
	return nil
}

func decodeAndVerify(buf []byte, fn func(r *dcfcodec.Reader) error) error {
	start := time.Now()
	r, err := dcfcodec.NewReader(buf)
	if err != nil {
		observability.RecordDecode(0, false, 0, time.Since(start))
		return err
	}
	err = fn(r)
	observability.RecordDecode(r.MsgType(), err == nil, int(r.Header().PayloadLen), time.Since(start))
	return err
}
