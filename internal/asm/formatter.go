package asm

import (
	"fmt"
	"strings"
)

const indent = "    "

// FormatLine renders a line in NASM syntax, without the trailing newline.
func FormatLine(line Line) string {
	var sb strings.Builder

	if line.Label != "" {
		sb.WriteString(line.Label)
		sb.WriteString(":")
		if line.Op != "" {
			sb.WriteString(" ")
		}
	} else if line.Op != "" {
		sb.WriteString(indent)
	}

	if line.Op != "" {
		sb.WriteString(line.Op)
		for i, arg := range line.Args {
			if i == 0 {
				sb.WriteString(" ")
			} else {
				sb.WriteString(", ")
			}
			sb.WriteString(argToString(arg))
		}
	}

	if line.Comment != "" {
		if sb.Len() > 0 {
			sb.WriteString("  ")
		} else {
			sb.WriteString(indent)
		}
		sb.WriteString("; ")
		sb.WriteString(line.Comment)
	}

	return sb.String()
}

func argToString(arg Arg) string {
	if arg.Raw != "" {
		return arg.Raw
	}

	var base string
	switch {
	case arg.Reg != "":
		base = arg.Reg
	case arg.Label != "":
		base = arg.Label
	case arg.Imm != nil:
		base = fmt.Sprintf("%d", *arg.Imm)
	default:
		panic(fmt.Errorf("invalid arg %#v", arg))
	}

	if !arg.Deref {
		return base
	}
	if arg.Imm != nil {
		panic(fmt.Errorf("cannot dereference an immediate: %#v", arg))
	}
	if arg.Size != 0 {
		return fmt.Sprintf("%s [%s]", sizeToPtr(arg.Size), base)
	}
	return "[" + base + "]"
}

func sizeToPtr(size int) string {
	switch size {
	case 1:
		return "byte"
	case 2:
		return "word"
	case 4:
		return "dword"
	case 8:
		return "qword"
	default:
		panic(fmt.Errorf("unsupported operand size: %d", size))
	}
}
