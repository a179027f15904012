package model

// District is a seeded reference row used for scoping and labels.  The
// Name is the value stored in the district column of scoped entities.
type District struct {
	ID   string `json:"id" yaml:"-"`
	Name string `json:"name" yaml:"name"`
	Code string `json:"code" yaml:"code"`
}

// Department is a seeded reference row for government departments.
type Department struct {
	ID   string `json:"id" yaml:"-"`
	Name string `json:"name" yaml:"name"`
	Code string `json:"code" yaml:"code"`
}
