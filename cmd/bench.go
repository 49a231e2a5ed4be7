package main

import (
	"ChunkStream/pkg/chunk"
	"ChunkStream/pkg/utils"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/urfave/cli/v2"
)

type benchResult struct {
	chunks int
	write  time.Duration
	export time.Duration
	copy   time.Duration
	read   time.Duration
}

// the pattern has a prime period so it never lines up with chunk boundaries
func pattern(off int64) byte {
	return byte(off % 251)
}

func fillPattern(p []byte, off int64) {
	for i := range p {
		p[i] = pattern(off + int64(i))
	}
}

func verifyPattern(p []byte, off int64) error {
	for i, c := range p {
		if c != pattern(off+int64(i)) {
			return fmt.Errorf("corrupted byte at %d: %d != %d", off+int64(i), c, pattern(off+int64(i)))
		}
	}
	return nil
}

func benchRound(conf *chunk.Config, total, blockSize int64, quiet bool) (*benchResult, error) {
	buf, err := chunk.NewBuffer(conf, nil)
	if err != nil {
		return nil, err
	}
	defer buf.Close()
	res := &benchResult{}
	blk := make([]byte, blockSize)

	progress, bar := utils.NewDynProgressBar("write: ", quiet)
	bar.SetTotal(total, false)
	start := time.Now()
	for off := int64(0); off < total; off += blockSize {
		n := min(blockSize, total-off)
		fillPattern(blk[:n], off)
		if _, err := buf.Write(blk[:n]); err != nil {
			return nil, err
		}
		bar.IncrInt64(n)
	}
	res.write = time.Since(start)
	bar.SetTotal(-1, true)
	progress.Wait()
	res.chunks = buf.Chunks()

	start = time.Now()
	if _, err := buf.WriteTo(io.Discard); err != nil {
		return nil, err
	}
	res.export = time.Since(start)

	start = time.Now()
	data, err := buf.Bytes()
	if err != nil {
		return nil, err
	}
	res.copy = time.Since(start)
	if int64(len(data)) != total {
		return nil, fmt.Errorf("exported %d bytes, expect %d", len(data), total)
	}
	if err = verifyPattern(data, 0); err != nil {
		return nil, err
	}

	if _, err = buf.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	var off int64
	start = time.Now()
	for {
		n, err := buf.Read(blk)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if err = verifyPattern(blk[:n], off); err != nil {
			return nil, err
		}
		off += int64(n)
	}
	res.read = time.Since(start)
	if off != total {
		return nil, fmt.Errorf("read back %d bytes, expect %d", off, total)
	}
	return res, nil
}

func throughput(n int64, d time.Duration) string {
	if d <= 0 {
		return "inf MiB/s"
	}
	return fmt.Sprintf("%.1f MiB/s", float64(n)/d.Seconds()/(1<<20))
}

func bench(c *cli.Context) error {
	chunkSize, err := parseChunkSize(c)
	if err != nil {
		return err
	}
	total, err := utils.ParseBytes(c.String("size"))
	if err != nil {
		return err
	}
	blockSize, err := utils.ParseBytes(c.String("block-size"))
	if err != nil {
		return err
	}
	if blockSize == 0 {
		return fmt.Errorf("block size should be positive")
	}
	poolSize, err := utils.ParseBytes(c.String("pool"))
	if err != nil {
		return err
	}
	conf := &chunk.Config{ChunkSize: chunkSize, OffHeap: c.Bool("off-heap")}
	if poolSize > 0 {
		conf.Pool = chunk.NewPagePool(poolSize)
	}

	id := uuid.New()
	logger.Infof("Bench %s: %s in blocks of %s, chunk size %s, %d rounds",
		id, utils.FormatBytes(total), utils.FormatBytes(blockSize), utils.FormatBytes(int64(chunkSize)), c.Int("rounds"))
	for i := 0; i < c.Int("rounds"); i++ {
		res, err := benchRound(conf, total, blockSize, c.Bool("quiet"))
		if err != nil {
			return fmt.Errorf("bench %s round %d: %s", id, i, err)
		}
		fmt.Printf("round %d: %d chunks, write %s, export %s, copy %s, read %s\n", i, res.chunks,
			throughput(total, res.write), throughput(total, res.export), throughput(total, res.copy), throughput(total, res.read))
	}

	ru := utils.GetRusage()
	fmt.Printf("cpu usage: %.2fs user, %.2fs system\n", ru.GetUtime(), ru.GetStime())
	if conf.Pool != nil {
		pages, used := conf.Pool.Stats()
		fmt.Printf("pool: %d idle chunks, %s\n", pages, utils.FormatBytes(used))
	}
	if conf.OffHeap {
		fmt.Printf("off-heap: %s still mapped\n", utils.FormatBytes(utils.AllocMemory()))
	}
	return nil
}

func benchFlags() *cli.Command {
	return &cli.Command{
		Name:   "bench",
		Usage:  "measure write, export and read back throughput",
		Action: bench,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "chunk-size",
				Value: "4KiB",
				Usage: "size of each chunk (less than 85000 bytes)",
			},
			&cli.StringFlag{
				Name:  "size",
				Value: "256MiB",
				Usage: "total size of data to write",
			},
			&cli.StringFlag{
				Name:  "block-size",
				Value: "64KiB",
				Usage: "size of each write",
			},
			&cli.StringFlag{
				Name:  "pool",
				Value: "0",
				Usage: "keep up to this much released chunks for reuse between rounds",
			},
			&cli.IntFlag{
				Name:  "rounds",
				Value: 1,
				Usage: "number of rounds",
			},
			&cli.BoolFlag{
				Name:  "off-heap",
				Usage: "allocate chunks outside the Go heap",
			},
		},
	}
}
