package main

import (
	"ChunkStream/pkg/chunk"
	"ChunkStream/pkg/sink"
	"ChunkStream/pkg/utils"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/urfave/cli/v2"
)

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

func openSource(name string) (io.ReadCloser, error) {
	if name == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	return os.Open(name)
}

func createSink(name string) (io.WriteCloser, error) {
	if name == "-" {
		return nopWriteCloser{os.Stdout}, nil
	}
	return os.Create(name)
}

// mibps converts a limit in MiB/s into bytes per second.
func mibps(v float64) int64 {
	return int64(v * (1 << 20))
}

func parseChunkSize(c *cli.Context) (int, error) {
	size, err := utils.ParseBytes(c.String("chunk-size"))
	if err != nil {
		return 0, err
	}
	if size >= chunk.MaxChunkSize {
		return 0, fmt.Errorf("chunk size %d should be less than %d", size, chunk.MaxChunkSize)
	}
	return int(size), nil
}

func copyData(c *cli.Context) error {
	if c.Args().Len() < 2 {
		return fmt.Errorf("SRC and DST are needed")
	}
	srcName, dstName := c.Args().Get(0), c.Args().Get(1)
	chunkSize, err := parseChunkSize(c)
	if err != nil {
		return err
	}
	buf, err := chunk.NewBuffer(&chunk.Config{ChunkSize: chunkSize, OffHeap: c.Bool("off-heap")}, nil)
	if err != nil {
		return err
	}
	defer buf.Close()

	src, err := openSource(srcName)
	if err != nil {
		return fmt.Errorf("open %s: %s", srcName, err)
	}
	r := sink.NewLimitedReader(src, mibps(c.Float64("read-limit")))
	start := time.Now()
	n, err := buf.ReadFrom(r)
	_ = r.Close()
	if err != nil {
		return fmt.Errorf("read %s: %s", srcName, err)
	}
	logger.Infof("Loaded %s from %s into %d chunks in %s", utils.FormatBytes(n), srcName, buf.Chunks(), time.Since(start))

	dst, err := createSink(dstName)
	if err != nil {
		return fmt.Errorf("create %s: %s", dstName, err)
	}
	w := sink.NewLimitedWriter(dst, mibps(c.Float64("write-limit")))
	start = time.Now()
	written, err := buf.WriteTo(w)
	if err != nil {
		_ = w.Close()
		return fmt.Errorf("write %s: %s", dstName, err)
	}
	if err = w.Close(); err != nil {
		return fmt.Errorf("close %s: %s", dstName, err)
	}
	logger.Infof("Wrote %s to %s in %s", utils.FormatBytes(written), dstName, time.Since(start))
	return nil
}

func copyFlags() *cli.Command {
	return &cli.Command{
		Name:      "copy",
		Usage:     "load data into a chunked buffer and write it out again",
		ArgsUsage: "SRC DST",
		Action:    copyData,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "chunk-size",
				Value: "4KiB",
				Usage: "size of each chunk (less than 85000 bytes)",
			},
			&cli.Float64Flag{
				Name:  "read-limit",
				Usage: "bandwidth limit for reading SRC in MiB/s",
			},
			&cli.Float64Flag{
				Name:  "write-limit",
				Usage: "bandwidth limit for writing DST in MiB/s",
			},
			&cli.BoolFlag{
				Name:  "off-heap",
				Usage: "allocate chunks outside the Go heap",
			},
		},
	}
}
