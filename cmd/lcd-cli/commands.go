package main

import (
	"strconv"
	"strings"
	"time"

	"github.com/c-bata/go-prompt"
	"github.com/juju/errors"
	"github.com/temoto/spotlcd/hardware/lcd"
	"github.com/temoto/spotlcd/helpers"
)

const usage = `syntax: commands separated by whitespace
- on off clear home
- cursor=C,R      move cursor to column C row R
- blink=yes|no underscore=yes|no
- scroll=left|right  shift display
- autoscroll=yes|no
- rgb=R,G,B       backlight PWM values
- ledblink=yes|no
- text=...        rest of line, \n is line break
- raw=...         rest of line at cursor, no clear
- tx=AA,XX...     raw write to bus address AA, hex bytes XX...
- sN              pause N milliseconds
- loop=N          repeat all commands on this line N times
`

type op struct {
	name string
	f    func(*lcd.Display) error
}

type parsed struct {
	ops  []op
	loop int
	help bool
}

var commandWords = []string{"on", "off", "clear", "home", "cursor=", "blink=", "underscore=",
	"scroll=", "autoscroll=", "rgb=", "ledblink=", "tx=", "text=", "raw=", "loop=", "help"}

func newCompleter() prompt.Completer {
	suggests := make([]prompt.Suggest, 0, len(commandWords))
	for _, w := range commandWords {
		suggests = append(suggests, prompt.Suggest{Text: w})
	}
	return func(d prompt.Document) []prompt.Suggest {
		return prompt.FilterHasPrefix(suggests, d.GetWordBeforeCursor(), true)
	}
}

func parseLine(line string, clock helpers.Clock) (*parsed, error) {
	p := &parsed{loop: 1}
	rest := strings.TrimSpace(line)
	loopSeen := false
	for rest != "" {
		var word string
		if i := strings.IndexAny(rest, " \t"); i >= 0 {
			word, rest = rest[:i], strings.TrimSpace(rest[i+1:])
		} else {
			word, rest = rest, ""
		}

		switch {
		case word == "help":
			p.help = true
		case strings.HasPrefix(word, "text=") || strings.HasPrefix(word, "raw="):
			// consumes rest of line
			key := word[:strings.IndexByte(word, '=')]
			s := strings.TrimPrefix(word, key+"=")
			if rest != "" {
				s += " " + rest
				rest = ""
			}
			s = strings.Replace(s, `\n`, "\n", -1)
			if key == "text" {
				p.add(word, func(d *lcd.Display) error { return d.SetText(s) })
			} else {
				p.add(word, func(d *lcd.Display) error { return d.SetTextRaw(s) })
			}
		case strings.HasPrefix(word, "loop="):
			if loopSeen {
				return nil, errors.Errorf("multiple loop commands, expected at most one")
			}
			n, err := strconv.ParseUint(word[5:], 10, 32)
			if err != nil {
				return nil, errors.Annotatef(err, "word=%s", word)
			}
			loopSeen = true
			p.loop = int(n)
		default:
			o, err := parseCommand(word, clock)
			if err != nil {
				return nil, err
			}
			p.ops = append(p.ops, o)
		}
	}
	return p, nil
}

func (p *parsed) add(name string, f func(*lcd.Display) error) {
	p.ops = append(p.ops, op{name: name, f: f})
}

func parseCommand(word string, clock helpers.Clock) (op, error) {
	simple := map[string]func(*lcd.Display) error{
		"on":    (*lcd.Display).On,
		"off":   (*lcd.Display).Off,
		"clear": (*lcd.Display).Clear,
		"home":  (*lcd.Display).Home,
	}
	if f, ok := simple[word]; ok {
		return op{word, f}, nil
	}

	key, value := word, ""
	if i := strings.IndexByte(word, '='); i >= 0 {
		key, value = word[:i], word[i+1:]
	}
	switch key {
	case "blink":
		return yesNo(word, value, (*lcd.Display).BlinkOn, (*lcd.Display).BlinkOff)
	case "underscore":
		return yesNo(word, value, (*lcd.Display).CursorOn, (*lcd.Display).CursorOff)
	case "autoscroll":
		return yesNo(word, value, (*lcd.Display).AutoscrollOn, (*lcd.Display).AutoscrollOff)
	case "ledblink":
		on := func(d *lcd.Display) error { return d.BlinkLEDOn(lcd.DefaultBlinkRatio) }
		return yesNo(word, value, on, (*lcd.Display).BlinkLEDOff)
	case "scroll":
		switch value {
		case "left":
			return op{word, (*lcd.Display).ScrollLeft}, nil
		case "right":
			return op{word, (*lcd.Display).ScrollRight}, nil
		}
		return op{}, errors.NotValidf("word=%s expected left|right", word)
	case "cursor":
		xs, err := parseInts(word, value, 2)
		if err != nil {
			return op{}, err
		}
		return op{word, func(d *lcd.Display) error { return d.SetCursor(xs[0], xs[1]) }}, nil
	case "tx":
		parts := strings.SplitN(value, ",", 2)
		if len(parts) != 2 {
			return op{}, errors.NotValidf("word=%s expected tx=AA,XX...", word)
		}
		addr, err := strconv.ParseUint(parts[0], 16, 8)
		if err != nil {
			return op{}, errors.Annotatef(err, "word=%s", word)
		}
		bs, err := helpers.ParseHex(parts[1])
		if err != nil {
			return op{}, errors.Annotatef(err, "word=%s", word)
		}
		return op{word, func(d *lcd.Display) error { return d.Tx(uint16(addr), bs) }}, nil
	case "rgb":
		xs, err := parseInts(word, value, 3)
		if err != nil {
			return op{}, err
		}
		return op{word, func(d *lcd.Display) error { return d.SetRGB(xs[0], xs[1], xs[2]) }}, nil
	}

	if word[0] == 's' {
		if ms, err := strconv.ParseUint(word[1:], 10, 32); err == nil {
			d := time.Duration(ms) * time.Millisecond
			return op{word, func(*lcd.Display) error { clock.Sleep(d); return nil }}, nil
		}
	}
	return op{}, errors.NotValidf("word=%s, try help", word)
}

func yesNo(word, value string, yes, no func(*lcd.Display) error) (op, error) {
	switch value {
	case "yes":
		return op{word, yes}, nil
	case "no":
		return op{word, no}, nil
	}
	return op{}, errors.NotValidf("word=%s expected yes|no", word)
}

func parseInts(word, value string, n int) ([]int, error) {
	parts := strings.Split(value, ",")
	if len(parts) != n {
		return nil, errors.NotValidf("word=%s expected %d comma separated numbers", word, n)
	}
	xs := make([]int, n)
	for i, s := range parts {
		x, err := strconv.Atoi(s)
		if err != nil {
			return nil, errors.Annotatef(err, "word=%s", word)
		}
		xs[i] = x
	}
	return xs, nil
}

// Run executes ops loop times, stops at first error.
func (p *parsed) Run(d *lcd.Display) error {
	for i := 0; i < p.loop; i++ {
		for _, o := range p.ops {
			if err := o.f(d); err != nil {
				return errors.Annotatef(err, "(%d)%s", i+1, o.name)
			}
		}
	}
	return nil
}
