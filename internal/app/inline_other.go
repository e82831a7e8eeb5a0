//go:build !unix

package app

import "errors"

func newInlineBackend() (Backend, error) {
	return nil, errors.New("inline backend needs a unix terminal, use --backend screen")
}
