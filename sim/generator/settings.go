package generator

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode"
)

type settingKind int

const (
	kindFlag settingKind = iota
	kindMode
	kindParm
)

func (k settingKind) String() string {
	switch k {
	case kindFlag:
		return "flag"
	case kindMode:
		return "mode"
	default:
		return "parm"
	}
}

type setting struct {
	name string // canonical spelling, e.g. "Beams:eCM"
	kind settingKind

	flag, flagDefault bool
	mode, modeDefault int
	parm, parmDefault float64
}

func (s *setting) changed() bool {
	switch s.kind {
	case kindFlag:
		return s.flag != s.flagDefault
	case kindMode:
		return s.mode != s.modeDefault
	default:
		return s.parm != s.parmDefault
	}
}

func (s *setting) valueString() string {
	switch s.kind {
	case kindFlag:
		if s.flag {
			return "on"
		}
		return "off"
	case kindMode:
		return strconv.Itoa(s.mode)
	default:
		return strconv.FormatFloat(s.parm, 'g', -1, 64)
	}
}

// Settings is the generator's key/value database. Keys are case-insensitive
// and colon-separated ("Beams:eCM"); values are typed.
//
// Thread-safety: NOT thread-safe.
type Settings struct {
	entries       map[string]*setting
	readingFailed bool
}

// NewSettings returns a database with every known key at its default value.
func NewSettings() *Settings {
	s := &Settings{entries: make(map[string]*setting)}

	s.addMode("Beams:idA", 2212)
	s.addMode("Beams:idB", 2212)
	s.addParm("Beams:eCM", 14000.)

	s.addFlag("HardQCD:all", false)
	s.addFlag("HardQCD:gg2gg", false)
	s.addFlag("HardQCD:qg2qg", false)
	s.addFlag("HardQCD:qq2qq", false)

	s.addParm("PhaseSpace:pTHatMin", 0.)
	s.addParm("PhaseSpace:pTHatMax", -1.)

	s.addFlag("PartonLevel:MPI", true)
	s.addFlag("HadronLevel:all", true)

	s.addFlag("Random:setSeed", false)
	s.addMode("Random:seed", -1)

	s.addMode("Next:numberCount", 1000)
	s.addMode("Next:maxTries", 100)
	return s
}

func (s *Settings) add(st *setting) {
	s.entries[strings.ToLower(st.name)] = st
}

func (s *Settings) addFlag(name string, def bool) {
	s.add(&setting{name: name, kind: kindFlag, flag: def, flagDefault: def})
}

func (s *Settings) addMode(name string, def int) {
	s.add(&setting{name: name, kind: kindMode, mode: def, modeDefault: def})
}

func (s *Settings) addParm(name string, def float64) {
	s.add(&setting{name: name, kind: kindParm, parm: def, parmDefault: def})
}

// ReadString applies one "Key = value" line. Lines that do not start with a
// letter are comments and are ignored. Anything after the first value token
// is ignored. A failed read marks the database so that Init refuses to run.
func (s *Settings) ReadString(line string) error {
	line = strings.TrimSpace(line)
	if line == "" || !unicode.IsLetter(rune(line[0])) {
		return nil
	}

	var key, rest string
	if i := strings.IndexByte(line, '='); i >= 0 {
		key, rest = line[:i], line[i+1:]
	} else {
		fields := strings.Fields(line)
		key = fields[0]
		rest = strings.TrimPrefix(line, key)
	}
	key = strings.TrimSpace(key)
	fields := strings.Fields(rest)
	if len(fields) == 0 {
		s.readingFailed = true
		return fmt.Errorf("setting %q has no value", key)
	}
	value := fields[0]

	st, ok := s.entries[strings.ToLower(key)]
	if !ok {
		s.readingFailed = true
		return fmt.Errorf("unknown setting %q", key)
	}

	if err := st.set(value); err != nil {
		s.readingFailed = true
		return fmt.Errorf("setting %s: %w", st.name, err)
	}
	return nil
}

func (st *setting) set(value string) error {
	switch st.kind {
	case kindFlag:
		b, err := parseFlag(value)
		if err != nil {
			return err
		}
		st.flag = b
	case kindMode:
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("mode value %q is not an integer", value)
		}
		st.mode = n
	default:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("parm value %q is not a number", value)
		}
		st.parm = f
	}
	return nil
}

func parseFlag(value string) (bool, error) {
	switch strings.ToLower(value) {
	case "on", "yes", "true", "1", "ok":
		return true, nil
	case "off", "no", "false", "0":
		return false, nil
	}
	return false, fmt.Errorf("flag value %q is not on/off", value)
}

// ReadingFailed reports whether any ReadString call was rejected.
func (s *Settings) ReadingFailed() bool {
	return s.readingFailed
}

func (s *Settings) lookup(name string, kind settingKind) *setting {
	st, ok := s.entries[strings.ToLower(name)]
	if !ok || st.kind != kind {
		panic(fmt.Sprintf("generator: no %s setting named %q", kind, name))
	}
	return st
}

// Flag returns the value of a flag setting. Unknown names panic.
func (s *Settings) Flag(name string) bool { return s.lookup(name, kindFlag).flag }

// Mode returns the value of an integer setting. Unknown names panic.
func (s *Settings) Mode(name string) int { return s.lookup(name, kindMode).mode }

// Parm returns the value of a real-valued setting. Unknown names panic.
func (s *Settings) Parm(name string) float64 { return s.lookup(name, kindParm).parm }

// Changed lists the settings that differ from their defaults as
// "Key = value" lines, sorted by key.
func (s *Settings) Changed() []string {
	var out []string
	for _, st := range s.entries {
		if st.changed() {
			out = append(out, st.name+" = "+st.valueString())
		}
	}
	sort.Slice(out, func(i, j int) bool { return strings.ToLower(out[i]) < strings.ToLower(out[j]) })
	return out
}
