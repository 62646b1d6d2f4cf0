package services

import "errors"

var ErrJobNotFound = errors.New("job not found")
