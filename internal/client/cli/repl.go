package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Record(ctx context.Context) error
	List(ctx context.Context) error
	Show(ctx context.Context, args []string) error
	Edit(ctx context.Context, args []string) error
	AddTag(ctx context.Context, args []string) error
	RemoveTag(ctx context.Context, args []string) error
	Tags(ctx context.Context) error
	Delete(ctx context.Context, args []string) error
	Export(ctx context.Context, args []string) error
	Archive(ctx context.Context, args []string) error
	printError(err error)
}

const helpText = `Available commands:
  record | r               record a new entry (Enter stops)
  list | l                 list entries, newest first
  show <n|id>              show one entry
  edit <n|id>              replace the transcript
  addtag <n|id> <tag>      add a tag
  rmtag <n|id> <tag>       remove a tag
  tags                     list suggested tags
  delete <n|id>            delete an entry
  export <n|id> [format]   print as text, markdown or html
  archive <n|id>           upload the text export to object storage
  exit | quit              leave the program`

// runREPL starts a simple read-eval-print loop for the Rooznegar CLI.
//
// It reads a line from reader, parses the first token as the command and
// dispatches to methods on 'a' with the remaining tokens as arguments.
// Unknown commands are reported back to the user. The loop exits on EOF,
// on context cancellation or when the user types "exit" or "quit".
//
// Errors returned by command handlers are printed and the loop continues.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		if ctx.Err() != nil {
			return
		}

		printlnFn(fmt.Sprintf("rz %s> ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		var cmdErr error
		switch cmd {
		case "help":
			printlnFn(helpText)

		case "r", "record":
			cmdErr = a.Record(ctx)

		case "l", "list":
			cmdErr = a.List(ctx)

		case "show":
			cmdErr = a.Show(ctx, args)

		case "edit":
			cmdErr = a.Edit(ctx, args)

		case "addtag":
			cmdErr = a.AddTag(ctx, args)

		case "rmtag":
			cmdErr = a.RemoveTag(ctx, args)

		case "tags":
			cmdErr = a.Tags(ctx)

		case "delete", "rm":
			cmdErr = a.Delete(ctx, args)

		case "export":
			cmdErr = a.Export(ctx, args)

		case "archive":
			cmdErr = a.Archive(ctx, args)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if cmdErr != nil {
			a.printError(cmdErr)
		}
	}
}
