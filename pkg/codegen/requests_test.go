package codegen

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osakka/axiosgen/pkg/config"
	cgerrors "github.com/osakka/axiosgen/pkg/errors"
	"github.com/osakka/axiosgen/pkg/openapi"
)

const swaggerDoc = `{
  "swagger": "2.0",
  "info": {"title": "Petstore", "version": "1"},
  "basePath": "/api",
  "paths": {
    "/pets/{petId}": {
      "parameters": [{"name": "petId", "in": "path", "type": "integer"}],
      "get": {
        "tags": ["pet"],
        "operationId": "getPetById",
        "parameters": [
          {"name": "X-Trace", "in": "header", "type": "string"},
          {"name": "fields", "in": "query", "type": "array", "items": {"type": "string"}}
        ],
        "responses": {"200": {"description": "ok", "schema": {"$ref": "#/definitions/Pet"}}}
      },
      "delete": {
        "tags": ["pet"],
        "operationId": "getPetById",
        "responses": {"204": {"description": "gone"}}
      }
    },
    "/pets": {
      "post": {
        "tags": ["pet"],
        "operationId": "add_pet",
        "parameters": [{"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/Pet"}}],
        "responses": {"201": {"description": "ok", "schema": {"type": "array", "items": {"$ref": "#/definitions/Pet"}}}}
      }
    },
    "/pets/{petId}/photo": {
      "post": {
        "tags": ["pet"],
        "operationId": "uploadPhoto",
        "parameters": [
          {"name": "petId", "in": "path", "required": true, "type": "integer"},
          {"name": "file", "in": "formData", "type": "file"}
        ],
        "responses": {"default": {"description": "x", "schema": {"$ref": "#/definitions/ApiResponse"}}}
      }
    },
    "/api/v1/stores/{id}": {
      "get": {"responses": {"200": {"description": "ok"}}}
    }
  }
}`

const openAPI3Doc = `{
  "openapi": "3.0.0",
  "info": {"title": "Users", "version": "1"},
  "paths": {
    "/users": {
      "post": {
        "tags": ["user"],
        "operationId": "createUser",
        "requestBody": {"$ref": "#/components/requestBodies/UserBody"},
        "responses": {"200": {"$ref": "#/components/responses/UserResponse"}}
      }
    },
    "/avatars": {
      "put": {
        "tags": ["user"],
        "operationId": "uploadAvatar",
        "requestBody": {"content": {"multipart/form-data": {"schema": {"$ref": "#/components/schemas/AvatarForm"}}}},
        "responses": {"204": {"description": "none"}, "202": {"description": "accepted"}}
      }
    },
    "/search": {
      "get": {
        "tags": ["user"],
        "operationId": "search",
        "parameters": [
          {"name": "kind", "in": "query", "schema": {"type": "string", "enum": ["a", "b"]}},
          {"name": "session", "in": "cookie", "schema": {"type": "string"}}
        ],
        "responses": {
          "200": {
            "description": "ok",
            "content": {
              "text/plain": {"schema": {"type": "string"}},
              "application/json": {"schema": {"oneOf": [{"$ref": "#/components/schemas/User"}, {"$ref": "#/components/schemas/Team"}]}}
            }
          }
        }
      }
    }
  },
  "components": {
    "schemas": {
      "User": {"type": "object", "properties": {"name": {"type": "string"}}},
      "Team": {"type": "object", "properties": {"title": {"type": "string"}}},
      "AvatarForm": {
        "type": "object",
        "required": ["image"],
        "properties": {"image": {"type": "string", "format": "binary"}, "caption": {"type": "string"}}
      }
    },
    "requestBodies": {
      "UserBody": {"required": true, "content": {"application/json": {"schema": {"$ref": "#/components/schemas/User"}}}}
    },
    "responses": {
      "UserResponse": {"description": "ok", "content": {"application/json": {"schema": {"$ref": "#/components/schemas/User"}}}}
    }
  }
}`

func decodeDoc(t *testing.T, src string) *openapi.Document {
	t.Helper()
	var doc openapi.Document
	require.NoError(t, json.Unmarshal([]byte(src), &doc))
	return &doc
}

func buildServices(t *testing.T, src string, mutate func(o *config.Options)) []*Service {
	t.Helper()
	opts := config.DefaultOptions()
	if mutate != nil {
		mutate(&opts)
	}
	doc := decodeDoc(t, src)
	services, err := NewBuilder(nil, &opts).BuildRequests(doc, doc.IsV3(""))
	require.NoError(t, err)
	return services
}

func requestNames(svc *Service) []string {
	var names []string
	for _, r := range svc.Requests {
		names = append(names, r.Name)
	}
	return names
}

func TestBuildRequestsSwagger2(t *testing.T) {
	services := buildServices(t, swaggerDoc, nil)
	require.Len(t, services, 2)

	pet := services[0]
	assert.Equal(t, "Pet", pet.Name)
	assert.Equal(t, "PetService", pet.ClassName)
	assert.Equal(t, []string{"getPetById", "getPetById2", "addPet", "uploadPhoto"}, requestNames(pet))

	get := pet.Requests[0]
	assert.Equal(t, "get", get.Method)
	assert.Equal(t, "/pets/{petId}", get.Path)
	require.Len(t, get.Params, 2)
	assert.Equal(t, Param{Name: "petId", WireName: "petId", In: InPath, Type: "number", Required: true}, get.Params[0])
	assert.Equal(t, Param{Name: "fields", WireName: "fields", In: InQuery, Type: "string[]"}, get.Params[1])
	assert.Equal(t, "Pet", get.ResponseType)
	assert.Equal(t, []string{"Pet"}, get.Imports)
	assert.Nil(t, get.Body)

	assert.Equal(t, "any", pet.Requests[1].ResponseType)

	add := pet.Requests[2]
	require.NotNil(t, add.Body)
	assert.Equal(t, "Pet", add.Body.Type)
	assert.True(t, add.Body.Required)
	assert.Equal(t, "Pet[]", add.ResponseType)
	assert.Equal(t, "application/json", add.ContentType)

	upload := pet.Requests[3]
	assert.Equal(t, "multipart/form-data", upload.ContentType)
	assert.True(t, upload.IsFormData())
	assert.Equal(t, []Param{{Name: "file", WireName: "file", In: InFormData, Type: "any"}}, upload.ParamsIn(InFormData))
	assert.Equal(t, "ApiResponse", upload.ResponseType)

	stores := services[1]
	assert.Equal(t, "Stores", stores.Name)
	assert.Equal(t, []string{"getApiV1StoresById"}, requestNames(stores))
	assert.Equal(t, []string{"ApiResponse", "Pet"}, pet.Imports())
}

func TestBuildRequestsHeaderParameters(t *testing.T) {
	services := buildServices(t, swaggerDoc, func(o *config.Options) { o.UseHeaderParameters = true })

	headers := services[0].Requests[0].ParamsIn(InHeader)
	require.Len(t, headers, 1)
	assert.Equal(t, "xTrace", headers[0].Name)
	assert.Equal(t, "X-Trace", headers[0].WireName)
}

func TestBuildRequestsPathNames(t *testing.T) {
	services := buildServices(t, swaggerDoc, func(o *config.Options) { o.MethodNameMode = config.MethodNamePath })

	assert.Equal(t, []string{"getPetsByPetId", "deletePetsByPetId", "postPets", "postPetsByPetIdPhoto"}, requestNames(services[0]))
}

func TestBuildRequestsFilters(t *testing.T) {
	services := buildServices(t, swaggerDoc, func(o *config.Options) { o.Include = []string{"PetService.addPet"} })
	require.Len(t, services, 1)
	assert.Equal(t, []string{"addPet"}, requestNames(services[0]))

	services = buildServices(t, swaggerDoc, func(o *config.Options) { o.Include = []string{"Stores"} })
	require.Len(t, services, 1)
	assert.Equal(t, "Stores", services[0].Name)

	services = buildServices(t, swaggerDoc, func(o *config.Options) { o.URLFilters = []string{"/pets"} })
	require.Len(t, services, 1)
	assert.Equal(t, []string{"addPet"}, requestNames(services[0]))
}

func TestBuildRequestsIncludeDuplicateName(t *testing.T) {
	services := buildServices(t, swaggerDoc, func(o *config.Options) { o.Include = []string{"Pet.getPetById2"} })
	require.Len(t, services, 1)
	require.Equal(t, []string{"getPetById2"}, requestNames(services[0]))
	assert.Equal(t, "delete", services[0].Requests[0].Method)
}

func TestBuildRequestsParameterNamedBody(t *testing.T) {
	services := buildServices(t, `{
  "openapi": "3.0.0",
  "info": {"title": "Notes", "version": "1"},
  "paths": {
    "/notes": {
      "post": {
        "tags": ["note"],
        "operationId": "createNote",
        "parameters": [{"name": "body", "in": "query", "schema": {"type": "string"}}],
        "requestBody": {"content": {"application/json": {"schema": {"type": "object"}}}},
        "responses": {"200": {"description": "ok"}}
      }
    }
  }
}`, nil)
	require.Len(t, services, 1)
	create := services[0].Requests[0]

	require.NotNil(t, create.Body)
	require.Len(t, create.Params, 1)
	assert.Equal(t, "body2", create.Params[0].Name)
	assert.Equal(t, "body", create.Params[0].WireName)
	assert.Equal(t, InQuery, create.Params[0].In)
}

func TestBuildRequestsOpenAPI3(t *testing.T) {
	services := buildServices(t, openAPI3Doc, nil)
	require.Len(t, services, 1)
	user := services[0]
	require.Len(t, user.Requests, 3)

	create := user.Requests[0]
	require.NotNil(t, create.Body)
	assert.Equal(t, "User", create.Body.Type)
	assert.True(t, create.Body.Required)
	assert.Equal(t, "User", create.ResponseType)
	assert.Equal(t, "application/json", create.ContentType)

	avatar := user.Requests[1]
	assert.Equal(t, "multipart/form-data", avatar.ContentType)
	assert.Nil(t, avatar.Body)
	assert.Equal(t, []Param{
		{Name: "image", WireName: "image", In: InFormData, Type: "any", Required: true},
		{Name: "caption", WireName: "caption", In: InFormData, Type: "string"},
	}, avatar.Params)
	assert.Equal(t, "any", avatar.ResponseType)

	search := user.Requests[2]
	require.Len(t, search.Params, 1)
	assert.Equal(t, "'a' | 'b'", search.Params[0].Type)
	assert.Equal(t, "User | Team", search.ResponseType)
	assert.Equal(t, []string{"Team", "User"}, search.Imports)
}

func TestBuildRequestsUnresolvedParameter(t *testing.T) {
	doc := decodeDoc(t, `{
	  "swagger": "2.0",
	  "info": {"title": "t", "version": "1"},
	  "paths": {"/x": {"get": {"parameters": [{"$ref": "#/parameters/Missing"}], "responses": {}}}}
	}`)

	opts := config.DefaultOptions()
	_, err := NewBuilder(nil, &opts).BuildRequests(doc, false)
	require.Error(t, err)
	assert.True(t, cgerrors.IsCategory(err, cgerrors.CategoryReference))
}

func TestServiceName(t *testing.T) {
	assert.Equal(t, "PetStore", ServiceName([]string{"pet store"}, "/x"))
	assert.Equal(t, "Orders", ServiceName(nil, "/api/v2/orders/{id}"))
	assert.Equal(t, "Default", ServiceName(nil, "/api/{id}"))
}

func TestSuccessResponseCode(t *testing.T) {
	var responses openapi.OrderedMap[*openapi.Response]
	require.NoError(t, json.Unmarshal([]byte(`{"default": {}, "204": {}, "202": {}}`), &responses))
	assert.Equal(t, "202", successResponseCode(&responses))

	var fallback openapi.OrderedMap[*openapi.Response]
	require.NoError(t, json.Unmarshal([]byte(`{"400": {}, "default": {}}`), &fallback))
	assert.Equal(t, "default", successResponseCode(&fallback))
}
