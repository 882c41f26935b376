package main

import "github.com/02loveslollipop/solar-potential-dashboard/services/solarctl/cmd"

func main() {
	cmd.Execute()
}
