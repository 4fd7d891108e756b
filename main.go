package main

import "github.com/arya-analytics/gatekeeper/cmd"

func main() { cmd.Execute() }
