// Package molfile reads and writes MDL molfiles (connection tables).  V3000
// is the primary format; V2000 files are accepted on input and re-emitted as
// V3000.
package molfile

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/turtacn/ninchi/internal/domain/molecule"
	"github.com/turtacn/ninchi/pkg/errors"
	"github.com/turtacn/ninchi/pkg/periodic"
)

// Format identifies the connection-table dialect of a molfile.
type Format string

const (
	FormatV2000 Format = "V2000"
	FormatV3000 Format = "V3000"
)

const (
	v30Prefix     = "M  V30 "
	v3000Header   = "  0  0  0     0  0            999 V3000"
	maxLineLength = 1 << 20
)

// Structure is a parsed molfile.  Header and Footer keep the lines around the
// atom and bond blocks so the file can be rewritten in a new atom order.
type Structure struct {
	Name   string
	Format Format

	// Header holds the lines before the counts line: five lines for V3000
	// (name, program, comment, version line, BEGIN CTAB), three for V2000.
	Header []string

	// Footer holds the lines after the bond block (END CTAB, M  END, ...).
	Footer []string

	Atoms []molecule.Atom
	Bonds []molecule.Bond
}

// Graph builds the molecular graph described by the structure.
func (s *Structure) Graph() (*molecule.Graph, error) {
	return molecule.NewGraph(s.Atoms, s.Bonds)
}

// Read parses the molfile at path.  The structure is named after the file's
// base name without extension.
func Read(path string, table periodic.Table) (*Structure, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.InputError("structure file not found").WithDetail(path)
		}
		return nil, errors.Wrap(err, errors.CodeInput, "failed to open structure file").WithDetail(path)
	}
	defer f.Close()

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	s, err := Parse(f, name, table)
	if err != nil {
		if ae, ok := err.(*errors.AppError); ok && ae.Detail == "" {
			return nil, ae.WithDetail(path)
		}
		return nil, err
	}
	return s, nil
}

// Parse reads a molfile from r.
func Parse(r io.Reader, name string, table periodic.Table) (*Structure, error) {
	lines, err := readLines(r)
	if err != nil {
		return nil, err
	}

	s := &Structure{Name: name}
	switch detectFormat(lines) {
	case FormatV3000:
		s.Format = FormatV3000
		err = parseV3000(s, lines, table)
	case FormatV2000:
		s.Format = FormatV2000
		err = parseV2000(s, lines, table)
	default:
		return nil, errors.InputError("missing counts line")
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

func readLines(r io.Reader) ([]string, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineLength)
	var lines []string
	for sc.Scan() {
		lines = append(lines, strings.TrimRight(sc.Text(), "\r"))
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, errors.CodeInput, "failed to read structure file")
	}
	return lines, nil
}

func detectFormat(lines []string) Format {
	for _, l := range lines {
		if strings.HasPrefix(l, v30Prefix+"COUNTS") {
			return FormatV3000
		}
	}
	if len(lines) > 3 {
		l := lines[3]
		if len(l) >= 39 && strings.Contains(l[30:39], "V2000") {
			return FormatV2000
		}
		if strings.HasSuffix(strings.TrimSpace(l), "V2000") {
			return FormatV2000
		}
	}
	return ""
}

// resolveSymbol maps a record symbol to an atomic number.  Deuterium and
// tritium are read as hydrogen.
func resolveSymbol(sym string, table periodic.Table) (int, error) {
	if sym == "D" || sym == "T" {
		sym = "H"
	}
	return table.AtomicNumber(sym)
}

// ─────────────────────────────────────────────────────────────────────────────
// V3000
// ─────────────────────────────────────────────────────────────────────────────

// joinContinuations merges "M  V30 ...-" lines with the following
// "M  V30 " line.
func joinContinuations(lines []string) ([]string, error) {
	out := make([]string, 0, len(lines))
	for i := 0; i < len(lines); i++ {
		cur := lines[i]
		for strings.HasPrefix(cur, v30Prefix) && strings.HasSuffix(cur, "-") && i+1 < len(lines) {
			next := lines[i+1]
			if !strings.HasPrefix(next, v30Prefix) {
				return nil, errors.InputError("invalid line continuation").WithDetailf("line=%d", i+2)
			}
			cur = cur[:len(cur)-1] + next[len(v30Prefix):]
			i++
		}
		out = append(out, cur)
	}
	return out, nil
}

// v30Body returns the text after "M  V30 " or ok=false for other lines.
func v30Body(line string) (string, bool) {
	if !strings.HasPrefix(line, v30Prefix) {
		return "", false
	}
	return strings.TrimSpace(line[len(v30Prefix):]), true
}

func isV30(line, body string) bool {
	b, ok := v30Body(line)
	return ok && b == body
}

func parseV3000(s *Structure, raw []string, table periodic.Table) error {
	lines, err := joinContinuations(raw)
	if err != nil {
		return err
	}

	countsAt := -1
	for i, l := range lines {
		if strings.HasPrefix(l, v30Prefix+"COUNTS") {
			countsAt = i
			break
		}
	}
	fields := strings.Fields(lines[countsAt])
	if len(fields) < 5 {
		return errors.InputError("malformed counts line").WithDetailf("line=%d %q", countsAt+1, lines[countsAt])
	}
	atomCount, err1 := strconv.Atoi(fields[3])
	bondCount, err2 := strconv.Atoi(fields[4])
	if err1 != nil || err2 != nil || atomCount < 0 || bondCount < 0 {
		return errors.InputError("malformed counts line").WithDetailf("line=%d %q", countsAt+1, lines[countsAt])
	}
	s.Header = append([]string(nil), lines[:countsAt]...)

	pos := countsAt + 1
	if pos >= len(lines) || !isV30(lines[pos], "BEGIN ATOM") {
		return errors.InputError("missing atom block").WithDetailf("line=%d", pos+1)
	}
	pos++

	index := make(map[int]int, atomCount)
	for ; pos < len(lines) && !isV30(lines[pos], "END ATOM"); pos++ {
		tok := strings.Fields(lines[pos])
		if len(tok) < 4 || tok[0] != "M" || tok[1] != "V30" {
			return errors.InputError("malformed atom record").WithDetailf("line=%d %q", pos+1, lines[pos])
		}
		idx, err := strconv.Atoi(tok[2])
		if err != nil {
			return errors.InputError("malformed atom record").WithDetailf("line=%d %q", pos+1, lines[pos])
		}
		if _, dup := index[idx]; dup {
			return errors.InputError("duplicate atom index").WithDetailf("line=%d index=%d", pos+1, idx)
		}
		z, err := resolveSymbol(tok[3], table)
		if err != nil {
			return err
		}
		attrs := ""
		if len(tok) > 4 {
			attrs = " " + strings.Join(tok[4:], " ")
		}
		index[idx] = len(s.Atoms)
		s.Atoms = append(s.Atoms, molecule.Atom{AtomicNumber: z, Attributes: attrs})
	}
	if pos >= len(lines) {
		return errors.InputError("unterminated atom block")
	}
	if len(s.Atoms) != atomCount {
		return errors.InputError("atom count mismatch").
			WithDetailf("declared=%d found=%d", atomCount, len(s.Atoms))
	}
	pos++ // END ATOM

	if pos < len(lines) && isV30(lines[pos], "BEGIN BOND") {
		pos++
		for ; pos < len(lines) && !isV30(lines[pos], "END BOND"); pos++ {
			tok := strings.Fields(lines[pos])
			if len(tok) < 6 || tok[0] != "M" || tok[1] != "V30" {
				return errors.InputError("malformed bond record").WithDetailf("line=%d %q", pos+1, lines[pos])
			}
			a, errA := strconv.Atoi(tok[4])
			b, errB := strconv.Atoi(tok[5])
			if errA != nil || errB != nil {
				return errors.InputError("malformed bond record").WithDetailf("line=%d %q", pos+1, lines[pos])
			}
			ia, okA := index[a]
			ib, okB := index[b]
			if !okA || !okB {
				return errors.InputError("bond references a missing atom").
					WithDetailf("line=%d atoms=%d-%d", pos+1, a, b)
			}
			s.Bonds = append(s.Bonds, molecule.NewBond(ia, ib))
		}
		if pos >= len(lines) {
			return errors.InputError("unterminated bond block")
		}
		pos++ // END BOND
	}
	if len(s.Bonds) != bondCount {
		return errors.InputError("bond count mismatch").
			WithDetailf("declared=%d found=%d", bondCount, len(s.Bonds))
	}

	s.Footer = append([]string(nil), lines[pos:]...)
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// V2000
// ─────────────────────────────────────────────────────────────────────────────

func column(line string, from, to int) string {
	if from >= len(line) {
		return ""
	}
	if to > len(line) {
		to = len(line)
	}
	return strings.TrimSpace(line[from:to])
}

func parseV2000(s *Structure, lines []string, table periodic.Table) error {
	const countsAt = 3
	counts := lines[countsAt]
	atomCount, err1 := strconv.Atoi(column(counts, 0, 3))
	bondCount, err2 := strconv.Atoi(column(counts, 3, 6))
	if err1 != nil || err2 != nil || atomCount < 0 || bondCount < 0 {
		return errors.InputError("malformed counts line").WithDetailf("line=%d %q", countsAt+1, counts)
	}
	s.Header = append([]string(nil), lines[:countsAt]...)

	atomStart := countsAt + 1
	bondStart := atomStart + atomCount
	if len(lines) < bondStart {
		return errors.InputError("atom count mismatch").
			WithDetailf("declared=%d found=%d", atomCount, len(lines)-atomStart)
	}
	for i := atomStart; i < bondStart; i++ {
		l := lines[i]
		sym := column(l, 31, 34)
		if sym == "" {
			return errors.InputError("atom count mismatch").
				WithDetailf("declared=%d found=%d", atomCount, i-atomStart)
		}
		z, err := resolveSymbol(sym, table)
		if err != nil {
			return err
		}
		attrs := " " + strings.Join([]string{column(l, 0, 10), column(l, 10, 20), column(l, 20, 30), "0"}, " ")
		s.Atoms = append(s.Atoms, molecule.Atom{AtomicNumber: z, Attributes: attrs})
	}

	end := bondStart + bondCount
	if len(lines) < end {
		return errors.InputError("bond count mismatch").
			WithDetailf("declared=%d found=%d", bondCount, len(lines)-bondStart)
	}
	for i := bondStart; i < end; i++ {
		l := lines[i]
		a, errA := strconv.Atoi(column(l, 0, 3))
		b, errB := strconv.Atoi(column(l, 3, 6))
		if errA != nil || errB != nil {
			return errors.InputError("bond count mismatch").
				WithDetailf("declared=%d found=%d", bondCount, i-bondStart)
		}
		if a < 1 || a > atomCount || b < 1 || b > atomCount {
			return errors.InputError("bond references a missing atom").
				WithDetailf("line=%d atoms=%d-%d", i+1, a, b)
		}
		s.Bonds = append(s.Bonds, molecule.NewBond(a-1, b-1))
	}

	s.Footer = append([]string(nil), lines[end:]...)
	return nil
}
