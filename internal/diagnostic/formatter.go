package diagnostic

import (
	"io"
	"strings"
)

type Formatter interface {
	FormatList(list List)
	FormatDiagnostic(d *Diagnostic)
}

func NewFormatter(w io.Writer) Formatter {
	return &formatter{writer: w}
}

type formatter struct {
	writer io.Writer

	indent int

	padNext  bool
	lineHead bool
}

func (f *formatter) writeString(s string) {
	_, _ = f.writer.Write([]byte(s))
}

func (f *formatter) writeIndent() *formatter {
	if f.lineHead {
		f.writeString(strings.Repeat("\t", f.indent))
	}
	f.lineHead = false
	f.padNext = false

	return f
}

func (f *formatter) WriteNewline() *formatter {
	f.writeString("\n")
	f.lineHead = true
	f.padNext = false

	return f
}

func (f *formatter) WriteWord(word string) *formatter {
	if f.lineHead {
		f.writeIndent()
	}
	if f.padNext {
		f.writeString(" ")
	}
	f.writeString(strings.TrimSpace(word))
	f.padNext = true

	return f
}

func (f *formatter) IncrementIndent() {
	f.indent++
}

func (f *formatter) DecrementIndent() {
	f.indent--
}

func (f *formatter) FormatList(list List) {
	for _, d := range list {
		f.FormatDiagnostic(d)
	}
}

func (f *formatter) FormatDiagnostic(d *Diagnostic) {
	f.WriteWord("error[" + d.Message.Code() + "]:").WriteWord(d.Message.String()).WriteNewline()

	f.IncrementIndent()
	f.WriteWord("-->").WriteWord(d.Location.String()).WriteNewline()
	for _, annotation := range d.Annotations {
		f.WriteWord(annotation.Label + ":").WriteWord(annotation.Location.String()).WriteNewline()
	}
	f.DecrementIndent()
}
