package listfetch_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"

	"github.com/samvad-hq/listfetch/pkg/listfetch"
)

type Animal struct {
	Name           string `json:"name"`
	Description    string `json:"description"`
	MaxWeightInLbs int    `json:"max_weight_lbs"`
}

func ExampleFetchList() {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `[{"name":"Lion","description":"Big cat","max_weight_lbs":550}]`)
	}))
	defer srv.Close()

	ctx := context.Background()
	animals, err := listfetch.FetchList[Animal](ctx, listfetch.New(), srv.URL).Await(ctx)
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	for _, a := range animals {
		fmt.Printf("%s (%s): %d lbs\n", a.Name, a.Description, a.MaxWeightInLbs)
	}
	// Output: Lion (Big cat): 550 lbs
}

func ExampleFetchListFunc() {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	done := make(chan struct{})
	listfetch.FetchListFunc(context.Background(), listfetch.New(), srv.URL, func(res listfetch.Result[[]Animal]) {
		defer close(done)
		if kind, ok := listfetch.KindOf(res.Err); ok {
			fmt.Println("failed:", kind)
			return
		}
		fmt.Println("animals:", len(res.Value))
	})
	<-done
	// Output: failed: server_error
}
