package schematic_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/bdfsim/schematic"
)

const topText = `
(pin (rect 0 0 20 20) input (pt 0 10) (text "I"))
(symbol (rect 40 0 60 20) (text "NOT") (text "u1")
  (port (pt 0 5) input (text "IN"))
  (port (pt 20 5) output (text "OUT")))
(pin (rect 100 0 120 20) output (pt 0 10) (text "O"))
(connector (pt 0 10) (pt 40 5))
(connector (pt 60 5) (pt 100 10))
(junction 1)
`

func writeFile(dir, name, text string) string {
	path := filepath.Join(dir, name)
	Expect(os.WriteFile(path, []byte(text), 0o644)).To(Succeed())
	return path
}

var _ = Describe("Load", func() {
	It("classifies pins, symbols, wires and junctions", func() {
		dir := GinkgoT().TempDir()
		path := writeFile(dir, "top.bdf", topText)

		s, err := schematic.Load(path)
		Expect(err).NotTo(HaveOccurred())

		Expect(s.Components).To(HaveLen(3))
		Expect(s.Wires).To(HaveLen(2))
		Expect(s.Junctions).To(HaveLen(1))

		Expect(s.Components[0].Kind).To(Equal(schematic.ComponentPin))
		Expect(s.Components[1].Kind).To(Equal(schematic.ComponentSymbol))
		Expect(s.Components[1].Name).To(Equal("NOT"))
		Expect(s.Components[1].Instance).To(Equal("u1"))
		Expect(s.Components[1].SubSchematic).To(BeNil())
	})

	It("resolves a sibling <name>.bdf symbol as a hierarchical sub-schematic", func() {
		dir := GinkgoT().TempDir()
		writeFile(dir, "SUB.bdf", `(pin (rect 0 0 10 10) input (pt 0 0) (text "IN"))`)
		outer := `(symbol (rect 0 0 20 20) (text "SUB") (text "inst1")
  (port (pt 0 5) input (text "IN")))`
		path := writeFile(dir, "top.bdf", outer)

		s, err := schematic.Load(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(s.Components).To(HaveLen(1))
		Expect(s.Components[0].SubSchematic).NotTo(BeNil())
		Expect(s.Components[0].SubSchematic.Components).To(HaveLen(1))
	})

	It("rejects a cyclic sub-schematic reference", func() {
		dir := GinkgoT().TempDir()
		writeFile(dir, "B.bdf", `(symbol (rect 0 0 20 20) (text "A") (text "inst1"))`)
		writeFile(dir, "A.bdf", `(symbol (rect 0 0 20 20) (text "B") (text "inst1"))`)

		_, err := schematic.Load(filepath.Join(dir, "A.bdf"))
		Expect(err).To(HaveOccurred())
		var integrity *schematic.IntegrityError
		Expect(err).To(BeAssignableToTypeOf(integrity))
	})

	It("reloads its classified view from disk", func() {
		dir := GinkgoT().TempDir()
		path := writeFile(dir, "top.bdf", topText)

		s, err := schematic.Load(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(s.Components).To(HaveLen(3))

		writeFile(dir, "top.bdf", `(pin (rect 0 0 10 10) input (pt 0 0) (text "ONLY"))`)
		Expect(s.Reload()).To(Succeed())
		Expect(s.Components).To(HaveLen(1))
	})
})
