package quiet

func derefNil() int {
	var p *int
	return *p
}

func nested(x bool) int {
	if x {
		if x {
			return 1
		}
	}
	return 0
}
