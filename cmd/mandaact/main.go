package main

import (
	_ "time/tzdata"

	"mandaact/cmd/mandaact/root"
)

func main() {
	root.Execute()
}
