package gcode

import "strings"

// isUpper reports whether b is an uppercase ASCII letter, used to detect
// parameter-identifier boundaries while scanning.
func isUpper(b byte) bool {
	return b >= 'A' && b <= 'Z'
}

func isBlank(b byte) bool {
	return b == ' ' || b == '\t' || b == '\r' || b == '\n'
}

// Parse populates r from line, returning true iff at least one parameter
// (or a host command) was found. Parse resets the record first, so a Record
// may be reused across calls.
func (r *Record) Parse(line string) bool {
	r.dataType = initialDataType
	r.parameters = [paramCount]string{}
	r.hostCommand = ""
	r.isHostCommand = false
	r.parsed = false
	r.empty = true

	start := 0
	for start < len(line) && isBlank(line[start]) {
		start++
	}
	body := line[start:]
	r.originalCommand = strings.TrimRight(body, " \t\r\n")

	if len(body) > 0 && body[0] == '@' {
		host := r.originalCommand
		if idx := strings.IndexByte(host, ';'); idx >= 0 {
			host = host[:idx]
		}
		host = strings.TrimRight(host, " \t\r\n")
		r.hostCommand = host
		r.isHostCommand = true
		r.parsed = true
		r.empty = false
		return true
	}

	var identifier byte
	var value strings.Builder

	commit := func() {
		if identifier == 0 {
			return
		}
		switch identifier {
		case 'N':
			r.SetValue(ParamN, value.String())
		case 'M':
			r.SetValue(ParamM, value.String())
		case 'G':
			r.SetValue(ParamG, value.String())
		case 'X':
			r.SetValue(ParamX, value.String())
		case 'Y':
			r.SetValue(ParamY, value.String())
		case 'Z':
			r.SetValue(ParamZ, value.String())
		case 'E':
			r.SetValue(ParamE, value.String())
		case 'F':
			r.SetValue(ParamF, value.String())
		case 'T':
			r.SetValue(ParamT, value.String())
		case 'S':
			r.SetValue(ParamS, value.String())
		case 'P':
			r.SetValue(ParamP, value.String())
		case 'I':
			r.SetValue(ParamI, value.String())
		case 'J':
			r.SetValue(ParamJ, value.String())
		case 'R':
			r.SetValue(ParamR, value.String())
		case 'D':
			r.SetValue(ParamD, value.String())
		}
	}

	i := 0
	for i <= len(body) {
		var c byte
		atEnd := i == len(body)
		if !atEnd {
			c = body[i]
		}
		boundary := i == 0 || atEnd || isUpper(c) || c == ';' || c == '*' || c == ' ' || c == '\t' || c == '\r' || c == '\n'
		if boundary {
			if i != 0 {
				commit()
			}
			value.Reset()

			// Special case: after an M-code naming a file/status command,
			// consume the remainder of the line (including the boundary
			// character just seen) into the string slot.
			if identifier == 'M' && stringTriggerCommands[r.GetValue(ParamM)] {
				var text strings.Builder
				for i < len(body) && body[i] != ';' && body[i] != '\r' && body[i] != '\n' {
					text.WriteByte(body[i])
					i++
				}
				if text.Len() > 0 {
					r.SetValue(ParamString, text.String())
				}
				atEnd = i == len(body)
				if !atEnd {
					c = body[i]
				}
			}

			if !atEnd && (c == ';' || c == '*') {
				break
			}
			if !atEnd {
				identifier = c
			}
		} else {
			value.WriteByte(c)
		}
		i++
	}

	r.parsed = r.dataType != initialDataType
	return r.parsed
}
