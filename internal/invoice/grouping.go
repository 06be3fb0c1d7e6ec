package invoice

// Section is a contiguous run of non-heading items grouped under an optional
// preceding heading. Rows always holds non-heading items only.
type Section struct {
	Heading *LineItem
	Rows    []LineItem
}

// Group partitions an ordered item list into heading-delimited sections. A
// row belongs to the nearest preceding heading; rows before the first heading
// form an unnamed leading section. Two consecutive headings yield a section
// with zero rows, which is still emitted. The input is never mutated and the
// concatenated rows of the result are exactly the non-heading items of the
// input, in order.
func Group(items []LineItem) []Section {
	sections := make([]Section, 0, 1)
	current := Section{}

	for _, item := range items {
		if item.IsHeading {
			if current.Heading != nil || len(current.Rows) > 0 {
				sections = append(sections, current)
			}
			heading := item
			current = Section{Heading: &heading}
			continue
		}
		current.Rows = append(current.Rows, item)
	}

	// The final accumulator is flushed unconditionally so every input yields
	// at least one section.
	return append(sections, current)
}

// Flatten is the inverse of Group: it rebuilds the flat ordered item list
// from sections. Group(Flatten(sections)) and Flatten(Group(items)) are
// lossless round trips.
func Flatten(sections []Section) []LineItem {
	var items []LineItem
	for _, s := range sections {
		if s.Heading != nil {
			items = append(items, *s.Heading)
		}
		items = append(items, s.Rows...)
	}
	return items
}
