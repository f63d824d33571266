package conditions

func nested(x bool) int {
	if x {
		if x { // want `FS010: condition x is always true`
			return 1
		}
	}
	return 0
}

func exclusive(a, b bool) int {
	if a && b {
		if !a { // want `FS011: condition !a is always false`
			return 1
		}
	}
	return 0
}

func joined(a bool) int {
	v := false
	if a {
		v = true
	}
	if v == a { // want `FS010: condition v == a is always true`
		return 1
	}
	return 0
}

func independent(a, b bool) int {
	if a {
		return 1
	}
	if b {
		return 2
	}
	return 0
}

func loop(n int) int {
	done := false
	for i := 0; i < n; i++ {
		if done {
			return i
		}
		done = i > 3
	}
	return 0
}

func cases(a bool) int {
	switch {
	case a:
		return 1
	case !a: // want `FS010: condition !a is always true`
		return 2
	}
	return 0
}

func taggedBool(b bool) int {
	switch b {
	case true:
		return 1
	}
	return 0
}

func anyTrue(xs []bool) bool {
	for _, x := range xs {
		if x {
			return true
		}
	}
	return false
}

func constant() int {
	const debug = false
	if debug {
		return 1
	}
	return 0
}
