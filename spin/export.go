package spin

import (
	"bufio"
	"encoding/json"
	"io"

	"github.com/klauspost/compress/zstd"
)

// ExportJSONL writes one record per line, zstd-compressed when compress is set.
func ExportJSONL(w io.Writer, records []Record, compress bool) error {
	var enc *zstd.Encoder
	dst := w
	if compress {
		var err error
		enc, err = zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedFastest))
		if err != nil {
			return err
		}
		dst = enc
	}
	bw := bufio.NewWriterSize(dst, 64*1024)
	je := json.NewEncoder(bw)
	for _, r := range records {
		if err := je.Encode(r); err != nil {
			if enc != nil {
				_ = enc.Close()
			}
			return err
		}
	}
	if err := bw.Flush(); err != nil {
		if enc != nil {
			_ = enc.Close()
		}
		return err
	}
	if enc != nil {
		return enc.Close()
	}
	return nil
}
