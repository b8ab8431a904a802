package loader

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// MaxImageWords bounds images read without an explicit memory size.
const MaxImageWords = 1 << 22

// ParseHex reads a memory image of hexadecimal words, one per line, as
// accepted by Verilog's $readmemh: blank lines and "//" or "#" comments
// are ignored, a "0x" prefix is allowed, and "@addr" moves the load
// position to word address addr. Images may hold at most MaxImageWords
// words.
func ParseHex(r io.Reader) ([]uint32, error) {
	return ParseHexLimit(r, MaxImageWords)
}

// ParseHexLimit is ParseHex for a memory of limit words. A word placed at
// or past limit is an error, reported before any storage is allocated for
// it.
func ParseHexLimit(r io.Reader, limit int) ([]uint32, error) {
	var (
		words []uint32
		pos   int
	)

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := stripComment(scanner.Text())
		for _, tok := range strings.Fields(line) {
			if strings.HasPrefix(tok, "@") {
				addr, err := strconv.ParseUint(tok[1:], 16, 32)
				if err != nil {
					return nil, fmt.Errorf("line %d: invalid address %q", lineNo, tok)
				}
				if addr > uint64(limit) {
					return nil, fmt.Errorf("line %d: address %q past the end of memory, memory holds %d words",
						lineNo, tok, limit)
				}
				pos = int(addr)
				continue
			}

			tok = strings.TrimPrefix(strings.TrimPrefix(tok, "0x"), "0X")
			w, err := strconv.ParseUint(strings.ReplaceAll(tok, "_", ""), 16, 32)
			if err != nil {
				return nil, fmt.Errorf("line %d: invalid hex word %q", lineNo, tok)
			}
			if pos >= limit {
				return nil, fmt.Errorf("line %d: word %d past the end of memory, memory holds %d words",
					lineNo, pos, limit)
			}

			for len(words) <= pos {
				words = append(words, 0)
			}
			words[pos] = uint32(w)
			pos++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}

	return words, nil
}

func stripComment(line string) string {
	if i := strings.Index(line, "//"); i >= 0 {
		line = line[:i]
	}
	if i := strings.Index(line, "#"); i >= 0 {
		line = line[:i]
	}
	return line
}

// ReadHexFile parses the image at path.
func ReadHexFile(path string) ([]uint32, error) {
	return readHexFile(path, MaxImageWords)
}

func readHexFile(path string, limit int) ([]uint32, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer func() { _ = f.Close() }()

	words, err := ParseHexLimit(f, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return words, nil
}

// PadImage returns words zero-padded to size words. Images longer than
// size are an error.
func PadImage(words []uint32, size int) ([]uint32, error) {
	if len(words) > size {
		return nil, fmt.Errorf("image has %d words, memory holds %d", len(words), size)
	}
	out := make([]uint32, size)
	copy(out, words)
	return out, nil
}

// WriteHex writes words as eight-digit lowercase hex, one per line.
func WriteHex(w io.Writer, words []uint32) error {
	bw := bufio.NewWriter(w)
	for _, word := range words {
		if _, err := fmt.Fprintf(bw, "%08x\n", word); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteHexFile writes words to path in the format of WriteHex.
func WriteHexFile(path string, words []uint32) error {
	var buf bytes.Buffer
	if err := WriteHex(&buf, words); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write image: %w", err)
	}
	return nil
}

// PadFile appends "00000000" lines to the image at path until it has size
// lines, keeping the existing lines as they are. The file must parse as an
// image and must not already be longer than size lines. It returns the
// number of lines added.
func PadFile(path string, size int) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to read image: %w", err)
	}
	if _, err := ParseHexLimit(bytes.NewReader(data), size); err != nil {
		return 0, fmt.Errorf("%s: %w", path, err)
	}

	lines := bytes.Count(data, []byte("\n"))
	if len(data) > 0 && data[len(data)-1] != '\n' {
		data = append(data, '\n')
		lines++
	}
	if lines > size {
		return 0, fmt.Errorf("%s has %d lines, memory holds %d words", path, lines, size)
	}

	added := size - lines
	if added == 0 {
		return 0, nil
	}
	data = append(data, bytes.Repeat([]byte("00000000\n"), added)...)

	if err := os.WriteFile(path, data, 0644); err != nil {
		return 0, fmt.Errorf("failed to write image: %w", err)
	}
	return added, nil
}
