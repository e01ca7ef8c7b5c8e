package main

import "github.com/davecgh/go-spew/spew"

var spewConfig = &spew.ConfigState{
	Indent:                  "  ",
	DisableCapacities:       true,
	DisablePointerAddresses: true,
	SortKeys:                true,
}

func sdump(a ...interface{}) string {
	return spewConfig.Sdump(a...)
}
