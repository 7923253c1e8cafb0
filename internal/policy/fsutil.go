package policy

import "os"

func fileInfo(path string) (os.FileInfo, error) { return os.Stat(path) }

func readFile(path string) ([]byte, error) { return os.ReadFile(path) }
