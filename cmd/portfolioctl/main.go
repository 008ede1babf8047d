// Command portfolioctl administers the portfolio database: creating the admin
// account and applying the schema.
package main

import "github.com/sakif/portfolio/cmd/portfolioctl/commands"

func main() {
	commands.Execute()
}
