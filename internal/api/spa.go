// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package api

import (
	"net/http"
	"path/filepath"
)

// SPA serves the compiled single-page app found in dir.
//
// shell answers every allowed page with index.html; assets serves the files
// under dir/assets. Both are nil when dir is empty, in which case pages
// answer with their route descriptor as JSON.
func SPA(dir string) (shell, assets http.Handler) {
	if dir == "" {
		return nil, nil
	}

	index := filepath.Join(dir, "index.html")
	shell = http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writer.Header().Set("Cache-Control", "no-cache")
		http.ServeFile(writer, request, index)
	})

	return shell, http.FileServer(http.Dir(dir))
}
