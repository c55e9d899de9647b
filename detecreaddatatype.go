package qcreport

import (
	"bufio"
	"compress/bzip2"
	"compress/gzip"
	"fmt"
	"io"

	"github.com/krolaw/zipstream"
	"github.com/xi2/xz"
)

type DataType byte

const (
	DataTypeInvalid DataType = iota
	DataTypeNoCompression
	DataTypeGzip
	DataTypeZip
	DataTypeXZ
	DataTypeZ
	DataTypeBZip2
)

func (dt DataType) String() string {
	switch dt {
	case DataTypeNoCompression:
		return "uncompressed"
	case DataTypeGzip:
		return "gzip"
	case DataTypeZip:
		return "zip"
	case DataTypeXZ:
		return "xz"
	case DataTypeZ:
		return "compress"
	case DataTypeBZip2:
		return "bzip2"
	}
	return "invalid"
}

// Checked in order. Byte code signatures from
// https://stackoverflow.com/a/19127748/199475
var byteCodeSigs = []struct {
	DataType
	sig []byte
}{
	{DataTypeGzip, []byte{0x1f, 0x8b, 0x08}},
	{DataTypeZip, []byte{0x50, 0x4b, 0x03, 0x04}},
	{DataTypeXZ, []byte{0xfd, 0x37, 0x7a, 0x58, 0x5a, 0x00}},
	{DataTypeZ, []byte{0x1f, 0x9d}},
	{DataTypeBZip2, []byte{0x42, 0x5a, 0x68}},
}

// DetectDataType peeks at the start of the stream and reports which known
// compression format, if any, it carries. Nothing is consumed from br, so the
// same reader can be handed to the matching decompressor. Streams shorter
// than a signature are treated as uncompressed.
func DetectDataType(br *bufio.Reader) (DataType, error) {
	buff, err := br.Peek(6)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return DataTypeInvalid, err
	}

Outer:
	for _, candidate := range byteCodeSigs {
		if len(buff) < len(candidate.sig) {
			continue
		}
		for position := range candidate.sig {
			if buff[position] != candidate.sig[position] {
				continue Outer
			}
		}
		return candidate.DataType, nil
	}

	return DataTypeNoCompression, nil
}

// Decompress wraps rc so that reads yield decompressed bytes. It works on
// plain streams (no seeking), which lets it sit on top of Google Storage
// readers as well as files. Closing the result closes rc.
func Decompress(rc io.ReadCloser) (io.ReadCloser, error) {
	br := bufio.NewReader(rc)

	dt, err := DetectDataType(br)
	if err != nil {
		rc.Close()
		return nil, err
	}

	var r io.Reader
	switch dt {
	case DataTypeGzip:
		gz, err := gzip.NewReader(br)
		if err != nil {
			rc.Close()
			return nil, err
		}
		r = gz
	case DataTypeZip:
		zr := zipstream.NewReader(br)
		// Artifacts are single files; read the first entry.
		if _, err := zr.Next(); err != nil {
			rc.Close()
			return nil, err
		}
		r = zr
	case DataTypeBZip2:
		r = bzip2.NewReader(br)
	case DataTypeXZ:
		xr, err := xz.NewReader(br, 0)
		if err != nil {
			rc.Close()
			return nil, err
		}
		r = xr
	case DataTypeZ:
		rc.Close()
		return nil, fmt.Errorf("%s-compressed (.Z) artifacts are not supported", dt)
	default:
		r = br
	}

	return &readCloser{Reader: r, closer: rc}, nil
}

// readCloser pairs a decompressing reader with the handle it reads from.
type readCloser struct {
	io.Reader
	closer io.Closer
}

func (c *readCloser) Close() error {
	return c.closer.Close()
}
