package loader_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/rv32mc/loader"
)

var _ = Describe("Hex images", func() {
	Describe("ParseHex", func() {
		It("should read one word per line", func() {
			words, err := loader.ParseHex(strings.NewReader("00418133\n02f18113\n"))
			Expect(err).NotTo(HaveOccurred())
			Expect(words).To(Equal([]uint32{0x00418133, 0x02f18113}))
		})

		It("should skip blank lines and comments and accept prefixes", func() {
			src := `
// boot code
0x00000013   # nop
DEADBEEF
ffff_0000
`
			words, err := loader.ParseHex(strings.NewReader(src))
			Expect(err).NotTo(HaveOccurred())
			Expect(words).To(Equal([]uint32{0x13, 0xDEADBEEF, 0xFFFF0000}))
		})

		It("should honour address directives", func() {
			words, err := loader.ParseHex(strings.NewReader("@4\n11\n22\n@1\n33\n"))
			Expect(err).NotTo(HaveOccurred())
			Expect(words).To(Equal([]uint32{0, 0x33, 0, 0, 0x11, 0x22}))
		})

		It("should report the line of a bad word", func() {
			_, err := loader.ParseHex(strings.NewReader("00000013\nxyz\n"))
			Expect(err).To(MatchError(ContainSubstring("line 2")))

			_, err = loader.ParseHex(strings.NewReader("123456789\n"))
			Expect(err).To(MatchError(ContainSubstring("invalid hex word")))

			_, err = loader.ParseHex(strings.NewReader("@zz\n"))
			Expect(err).To(MatchError(ContainSubstring("invalid address")))
		})

		It("should reject addresses past the largest image without allocating", func() {
			words, err := loader.ParseHex(strings.NewReader("@1000000\ndeadbeef\n"))
			Expect(err).To(MatchError(ContainSubstring("line 1")))
			Expect(err).To(MatchError(ContainSubstring("past the end of memory")))
			Expect(words).To(BeNil())

			_, err = loader.ParseHex(strings.NewReader("@ffffffff\n"))
			Expect(err).To(HaveOccurred())

			_, err = loader.ParseHex(strings.NewReader("@400000\n1\n"))
			Expect(err).To(MatchError(ContainSubstring("line 2")))
		})
	})

	Describe("ParseHexLimit", func() {
		It("should accept images that fill memory exactly", func() {
			words, err := loader.ParseHexLimit(strings.NewReader("@2\n1\n2\n"), 4)
			Expect(err).NotTo(HaveOccurred())
			Expect(words).To(Equal([]uint32{0, 0, 1, 2}))
		})

		It("should reject words past the memory size", func() {
			_, err := loader.ParseHexLimit(strings.NewReader("@3\n1\n2\n"), 4)
			Expect(err).To(MatchError(ContainSubstring("line 3")))
			Expect(err).To(MatchError(ContainSubstring("memory holds 4 words")))

			_, err = loader.ParseHexLimit(strings.NewReader("@5\n"), 4)
			Expect(err).To(MatchError(ContainSubstring("line 1")))
		})
	})

	Describe("PadImage", func() {
		It("should zero-pad to the memory size", func() {
			words, err := loader.PadImage([]uint32{1, 2}, 4)
			Expect(err).NotTo(HaveOccurred())
			Expect(words).To(Equal([]uint32{1, 2, 0, 0}))
		})

		It("should reject oversized images", func() {
			_, err := loader.PadImage([]uint32{1, 2, 3}, 2)
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("WriteHex", func() {
		It("should write eight lowercase digits per line", func() {
			var buf bytes.Buffer
			Expect(loader.WriteHex(&buf, []uint32{0xABCDEF01, 0x13})).To(Succeed())
			Expect(buf.String()).To(Equal("abcdef01\n00000013\n"))
		})
	})

	Describe("Files", func() {
		var tempDir string

		BeforeEach(func() {
			var err error
			tempDir, err = os.MkdirTemp("", "hex-image-test")
			Expect(err).NotTo(HaveOccurred())
		})

		AfterEach(func() {
			_ = os.RemoveAll(tempDir)
		})

		It("should round-trip through a file", func() {
			path := filepath.Join(tempDir, "img.hex")
			Expect(loader.WriteHexFile(path, []uint32{1, 2, 3})).To(Succeed())

			words, err := loader.ReadHexFile(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(words).To(Equal([]uint32{1, 2, 3}))
		})

		It("should pad a file in place, keeping its lines", func() {
			path := filepath.Join(tempDir, "pad.hex")
			Expect(os.WriteFile(path, []byte("// header\n00000013"), 0644)).To(Succeed())

			added, err := loader.PadFile(path, 5)
			Expect(err).NotTo(HaveOccurred())
			Expect(added).To(Equal(3))

			data, _ := os.ReadFile(path)
			Expect(string(data)).To(Equal("// header\n00000013\n00000000\n00000000\n00000000\n"))

			added, err = loader.PadFile(path, 5)
			Expect(err).NotTo(HaveOccurred())
			Expect(added).To(Equal(0))
		})

		It("should refuse to pad invalid or oversized files", func() {
			bad := filepath.Join(tempDir, "bad.hex")
			Expect(os.WriteFile(bad, []byte("nothex\n"), 0644)).To(Succeed())
			_, err := loader.PadFile(bad, 4)
			Expect(err).To(MatchError(ContainSubstring("line 1")))

			big := filepath.Join(tempDir, "big.hex")
			Expect(os.WriteFile(big, []byte("1\n2\n3\n"), 0644)).To(Succeed())
			_, err = loader.PadFile(big, 2)
			Expect(err).To(HaveOccurred())
		})
	})
})
