package main

import "github.com/Seann-Moser/pca9685servod/cmd"

func main() {
	cmd.Execute()
}
