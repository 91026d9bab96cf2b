package service

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/fulldump/apitest"
	"github.com/fulldump/biff"
)

type JSON = map[string]interface{}

func ndjson(body string) []interface{} {
	result := []interface{}{}
	dec := json.NewDecoder(strings.NewReader(body))
	for dec.More() {
		var row interface{}
		if err := dec.Decode(&row); err != nil {
			break
		}
		result = append(result, row)
	}
	return result
}

func ndjsonBody(documents ...JSON) string {
	body := ""
	for _, document := range documents {
		b, _ := json.Marshal(document)
		body += string(b) + "\n"
	}
	return body
}

// Acceptance runs the HTTP scenarios against any handler serving /v1.
func Acceptance(a *biff.A, apiRequest func(method, path string) *apitest.Request) {

	a.Alternative("Create pool", func(a *biff.A) {
		resp := apiRequest("POST", "/pools").
			WithBodyJson(JSON{
				"name":        "players",
				"max_size":    3,
				"defrag_mode": "manual",
			}).Do()
		Save(resp, "Create pool", `
			Creates an empty pool. Every field but 'name' is optional and
			defaults to the server configuration.
		`)

		biff.AssertEqual(resp.StatusCode, http.StatusCreated)
		body := resp.BodyJsonMap()
		biff.AssertEqual(body["name"], "players")
		biff.AssertEqualJson(body["config"], JSON{
			"max_size":         3,
			"reserve":          0,
			"shrink_threshold": 1024,
			"defrag_mode":      "manual",
			"ordered_index":    false,
		})
		biff.AssertEqual(body["stats"].(JSON)["live"], float64(0))
		biff.AssertEqual(body["stats"].(JSON)["frontier"], float64(-1))

		a.Alternative("Retrieve pool", func(a *biff.A) {
			resp := apiRequest("GET", "/pools/players").Do()
			Save(resp, "Retrieve pool", ``)

			biff.AssertEqual(resp.StatusCode, http.StatusOK)
			biff.AssertEqual(resp.BodyJsonMap()["name"], "players")
		})

		a.Alternative("List pools", func(a *biff.A) {
			resp := apiRequest("GET", "/pools").Do()
			Save(resp, "List pools", ``)

			biff.AssertEqual(resp.StatusCode, http.StatusOK)
			pools := resp.BodyJson().([]interface{})
			biff.AssertEqual(len(pools), 1)
			biff.AssertEqual(pools[0].(JSON)["name"], "players")
		})

		a.Alternative("Create existing pool", func(a *biff.A) {
			resp := apiRequest("POST", "/pools").
				WithBodyJson(JSON{"name": "players"}).Do()

			biff.AssertEqual(resp.StatusCode, http.StatusConflict)
		})

		a.Alternative("Drop pool", func(a *biff.A) {
			resp := apiRequest("POST", "/pools/players:dropPool").Do()
			Save(resp, "Drop pool", ``)

			biff.AssertEqual(resp.StatusCode, http.StatusOK)

			a.Alternative("Get dropped pool", func(a *biff.A) {
				resp := apiRequest("GET", "/pools/players").Do()
				Save(resp, "Get pool - not found", ``)

				biff.AssertEqual(resp.StatusCode, http.StatusNotFound)
				biff.AssertEqual(resp.BodyJsonMap()["error"].(JSON)["description"], "pool not found")
			})
		})

		a.Alternative("Alloc documents", func(a *biff.A) {
			myDocuments := []JSON{
				{"name": "Alfonso", "hp": 10},
				{"name": "Gerardo", "hp": 3},
				{"name": "Alfonso", "hp": 7},
			}
			resp := apiRequest("POST", "/pools/players:alloc").
				WithBodyString(ndjsonBody(myDocuments...)).Do()
			Save(resp, "Alloc documents", `
				Send one JSON object per line, the response has one id per line
				in the same order.
			`)

			biff.AssertEqual(resp.StatusCode, http.StatusCreated)
			biff.AssertEqualJson(ndjson(resp.BodyString()), []JSON{
				{"id": 0}, {"id": 1}, {"id": 2},
			})

			a.Alternative("Alloc over max size", func(a *biff.A) {
				resp := apiRequest("POST", "/pools/players:alloc").
					WithBodyJson(JSON{"name": "Intruder"}).Do()
				Save(resp, "Alloc - pool full", ``)

				biff.AssertEqual(resp.StatusCode, http.StatusInsufficientStorage)
			})

			a.Alternative("Get document", func(a *biff.A) {
				resp := apiRequest("POST", "/pools/players:get").
					WithBodyJson(JSON{"id": 1}).Do()
				Save(resp, "Get document", ``)

				biff.AssertEqual(resp.StatusCode, http.StatusOK)
				biff.AssertEqualJson(resp.BodyJson(), JSON{
					"id":       1,
					"document": myDocuments[1],
				})
			})

			a.Alternative("Get unknown document", func(a *biff.A) {
				resp := apiRequest("POST", "/pools/players:get").
					WithBodyJson(JSON{"id": 99}).Do()

				biff.AssertEqual(resp.StatusCode, http.StatusNotFound)
			})

			a.Alternative("Find with filter", func(a *biff.A) {
				resp := apiRequest("POST", "/pools/players:find").
					WithBodyJson(JSON{
						"limit": 10,
						"filter": JSON{
							"name": "Alfonso",
						},
					}).Do()
				Save(resp, "Find - filter", ``)

				biff.AssertEqual(resp.StatusCode, http.StatusOK)
				biff.AssertEqualJson(ndjson(resp.BodyString()), []JSON{
					{"id": 0, "document": myDocuments[0]},
					{"id": 2, "document": myDocuments[2]},
				})
			})

			a.Alternative("Find default limit", func(a *biff.A) {
				resp := apiRequest("POST", "/pools/players:find").Do()

				biff.AssertEqual(resp.StatusCode, http.StatusOK)
				biff.AssertEqual(len(ndjson(resp.BodyString())), 1)
			})

			a.Alternative("Release by id", func(a *biff.A) {
				resp := apiRequest("POST", "/pools/players:release").
					WithBodyJson(JSON{"ids": []int{0}}).Do()
				Save(resp, "Release - by id", ``)

				biff.AssertEqual(resp.StatusCode, http.StatusOK)
				biff.AssertEqualJson(ndjson(resp.BodyString()), []JSON{{"id": 0}})

				a.Alternative("Released id is gone", func(a *biff.A) {
					resp := apiRequest("POST", "/pools/players:get").
						WithBodyJson(JSON{"id": 0}).Do()

					biff.AssertEqual(resp.StatusCode, http.StatusNotFound)
				})

				a.Alternative("Release twice", func(a *biff.A) {
					resp := apiRequest("POST", "/pools/players:release").
						WithBodyJson(JSON{"ids": []int{0}}).Do()

					biff.AssertEqual(resp.StatusCode, http.StatusNotFound)
				})

				a.Alternative("Alloc fills the hole", func(a *biff.A) {
					resp := apiRequest("POST", "/pools/players:alloc").
						WithBodyJson(JSON{"name": "Pedro"}).Do()

					biff.AssertEqual(resp.StatusCode, http.StatusCreated)
					biff.AssertEqualJson(ndjson(resp.BodyString()), []JSON{{"id": 3}})

					resp = apiRequest("GET", "/pools/players").Do()
					stats := resp.BodyJsonMap()["stats"].(JSON)
					biff.AssertEqual(stats["live"], float64(3))
					biff.AssertEqual(stats["holes"], float64(0))
				})

				a.Alternative("Trim with holes", func(a *biff.A) {
					resp := apiRequest("POST", "/pools/players:trim").Do()
					Save(resp, "Trim - holes pending", ``)

					biff.AssertEqual(resp.StatusCode, http.StatusConflict)
				})

				a.Alternative("Defrag", func(a *biff.A) {
					resp := apiRequest("POST", "/pools/players:defrag").Do()
					Save(resp, "Defrag", `
						Closes every hole moving the last objects into them. Ids
						do not change.
					`)

					biff.AssertEqual(resp.StatusCode, http.StatusOK)
					stats := resp.BodyJsonMap()
					biff.AssertEqual(stats["holes"], float64(0))
					biff.AssertEqual(stats["frontier"], float64(1))
					biff.AssertEqual(stats["moves"], float64(1))

					a.Alternative("Trim", func(a *biff.A) {
						resp := apiRequest("POST", "/pools/players:trim").Do()
						Save(resp, "Trim", ``)

						biff.AssertEqual(resp.StatusCode, http.StatusOK)
						biff.AssertEqual(resp.BodyJsonMap()["slots"], float64(2))
					})

					a.Alternative("Ordered find after defrag", func(a *biff.A) {
						resp := apiRequest("POST", "/pools/players:find").
							WithBodyJson(JSON{"limit": 0, "ordered": true}).Do()

						biff.AssertEqualJson(ndjson(resp.BodyString()), []JSON{
							{"id": 1, "document": myDocuments[1]},
							{"id": 2, "document": myDocuments[2]},
						})
					})
				})
			})

			a.Alternative("Release by filter", func(a *biff.A) {
				resp := apiRequest("POST", "/pools/players:release").
					WithBodyJson(JSON{
						"filter": JSON{"hp": JSON{"$gte": 5}},
					}).Do()
				Save(resp, "Release - by filter", ``)

				biff.AssertEqual(resp.StatusCode, http.StatusOK)
				biff.AssertEqualJson(ndjson(resp.BodyString()), []JSON{{"id": 0}, {"id": 2}})

				resp = apiRequest("POST", "/pools/players:find").
					WithBodyJson(JSON{"limit": 0}).Do()
				biff.AssertEqualJson(ndjson(resp.BodyString()), []JSON{
					{"id": 1, "document": myDocuments[1]},
				})
			})

			a.Alternative("Release with an unknown id", func(a *biff.A) {
				resp := apiRequest("POST", "/pools/players:release").
					WithBodyJson(JSON{"ids": []int{0, 99}}).Do()
				Save(resp, "Release - unknown id", `
					A list of ids is released all or nothing. When one of them is
					not allocated nothing is released.
				`)

				biff.AssertEqual(resp.StatusCode, http.StatusNotFound)
				biff.AssertEqual(len(ndjson(resp.BodyString())), 1)
				biff.AssertNotNil(resp.BodyJsonMap()["error"])

				resp = apiRequest("POST", "/pools/players:get").
					WithBodyJson(JSON{"id": 0}).Do()
				biff.AssertEqual(resp.StatusCode, http.StatusOK)
			})

			a.Alternative("Release without criteria", func(a *biff.A) {
				resp := apiRequest("POST", "/pools/players:release").
					WithBodyJson(JSON{}).Do()

				biff.AssertEqual(resp.StatusCode, http.StatusBadRequest)
			})

			a.Alternative("Clear", func(a *biff.A) {
				resp := apiRequest("POST", "/pools/players:clear").Do()
				Save(resp, "Clear", ``)

				biff.AssertEqual(resp.StatusCode, http.StatusOK)
				biff.AssertEqual(resp.BodyJsonMap()["live"], float64(0))
			})
		})

		a.Alternative("Alloc bad document", func(a *biff.A) {
			resp := apiRequest("POST", "/pools/players:alloc").
				WithBodyString(`[1, 2, 3]`).Do()

			biff.AssertEqual(resp.StatusCode, http.StatusBadRequest)
		})
	})

	a.Alternative("Alloc creates the pool", func(a *biff.A) {
		resp := apiRequest("POST", "/pools/bullets:alloc").
			WithBodyJson(JSON{"x": 1, "y": 2}).Do()

		biff.AssertEqual(resp.StatusCode, http.StatusCreated)

		resp = apiRequest("GET", "/pools/bullets").Do()
		biff.AssertEqual(resp.StatusCode, http.StatusOK)
		biff.AssertEqual(resp.BodyJsonMap()["config"].(JSON)["defrag_mode"], "deferred")
	})

	a.Alternative("Create pool with bad defrag mode", func(a *biff.A) {
		resp := apiRequest("POST", "/pools").
			WithBodyJson(JSON{"name": "x", "defrag_mode": "sometimes"}).Do()

		biff.AssertEqual(resp.StatusCode, http.StatusBadRequest)
	})

	a.Alternative("Create pool with negative reserve", func(a *biff.A) {
		resp := apiRequest("POST", "/pools").
			WithBodyJson(JSON{"name": "x", "reserve": -1}).Do()

		biff.AssertEqual(resp.StatusCode, http.StatusBadRequest)
	})

	a.Alternative("Create pool with huge reserve", func(a *biff.A) {
		resp := apiRequest("POST", "/pools").
			WithBodyJson(JSON{"name": "x", "reserve": 1 << 40}).Do()
		Save(resp, "Create pool - reserve over the limit", ``)

		biff.AssertEqual(resp.StatusCode, http.StatusBadRequest)

		resp = apiRequest("GET", "/pools/x").Do()
		biff.AssertEqual(resp.StatusCode, http.StatusNotFound)
	})

	a.Alternative("Huge reserve on a bounded pool", func(a *biff.A) {
		resp := apiRequest("POST", "/pools").
			WithBodyJson(JSON{"name": "x", "max_size": 8, "reserve": 1 << 40}).Do()

		biff.AssertEqual(resp.StatusCode, http.StatusCreated)
		biff.AssertEqual(resp.BodyJsonMap()["config"].(JSON)["reserve"], float64(8))
	})

	a.Alternative("Create pool without name", func(a *biff.A) {
		resp := apiRequest("POST", "/pools").
			WithBodyJson(JSON{}).Do()

		biff.AssertEqual(resp.StatusCode, http.StatusBadRequest)
	})

	a.Alternative("Unknown pool", func(a *biff.A) {
		resp := apiRequest("POST", "/pools/nope:defrag").Do()

		biff.AssertEqual(resp.StatusCode, http.StatusNotFound)
	})
}
