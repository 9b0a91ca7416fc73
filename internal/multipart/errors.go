package multipart

import "fmt"

var (
	ErrNoBoundary  = fmt.Errorf("no boundary found")
	ErrParseFailed = fmt.Errorf("multipart parse failed")
)
