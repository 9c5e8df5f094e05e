package utils

import (
	"bufio"
	"io"
	"strings"
)

func ReadLine(r io.Reader, output *string) error {
	reader := bufio.NewReader(r)
	o, err := reader.ReadString('\n')
	if err != nil && !(err == io.EOF && o != "") {
		*output = ""
		return err
	}

	o = strings.TrimRight(o, "\r\n")
	*output = o
	return nil
}
