// Точка входа FaultDesk — сервиса учёта заявок о неисправностях.
package main

import "github.com/bigkaa/faultdesk/internal/cli"

func main() {
	cli.Execute()
}
